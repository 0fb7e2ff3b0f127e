package worker

import (
	"context"
	"log/slog"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
)

// Walker fetches comment trees one depth at a time.
//
// Every id of a level is requested at once and the level must complete
// before the next one is issued. There is no depth limit, cycle guard or
// width cap beyond what the ItemGetter itself enforces: comment trees are
// finite and acyclic, and a large thread issues one request per comment.
type Walker struct {
	items hn.ItemGetter
}

func NewWalker(items hn.ItemGetter) *Walker {
	return &Walker{items: items}
}

// Walk fetches ids and all of their descendants and returns every visited
// item as one flat slice, level by level. The items owning ids are not
// fetched again. A failure anywhere fails the whole walk.
func (w *Walker) Walk(ctx context.Context, ids []int) ([]*hn.Item, error) {
	return w.walk(ctx, ids, nil, 1)
}

func (w *Walker) walk(ctx context.Context, ids []int, visited []*hn.Item, depth int) ([]*hn.Item, error) {
	if len(ids) == 0 {
		return visited, nil
	}

	items, err := hn.GetItems(ctx, w.items, ids)
	if err != nil {
		return nil, err
	}

	var kids []int
	for _, item := range items {
		kids = append(kids, item.Children()...)
	}
	slog.Debug("walked comment level", "depth", depth, "fetched", len(items), "next", len(kids))

	visited = append(visited, items...)
	if len(kids) == 0 {
		return visited, nil
	}
	return w.walk(ctx, kids, visited, depth+1)
}
