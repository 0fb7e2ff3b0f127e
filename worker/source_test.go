package worker

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
)

// fakeSource serves items from memory and records what was asked for.
type fakeSource struct {
	mu       sync.Mutex
	top      []int
	topErr   error
	items    map[int]*hn.Item
	itemErrs map[int]error
	delay    time.Duration
	topCalls int
	fetched  []int
}

func newFakeSource(top []int, items ...*hn.Item) *fakeSource {
	f := &fakeSource{top: top, items: make(map[int]*hn.Item), itemErrs: make(map[int]error)}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeSource) TopStories(ctx context.Context, limit int) ([]int, error) {
	f.mu.Lock()
	f.topCalls++
	f.mu.Unlock()
	if err := sleep(ctx, f.delay); err != nil {
		return nil, err
	}
	if f.topErr != nil {
		return nil, f.topErr
	}
	ids := f.top
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeSource) GetItem(ctx context.Context, id int) (*hn.Item, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	err := f.itemErrs[id]
	item, ok := f.items[id]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return &hn.Item{}, nil
	}
	return item, nil
}

func (f *fakeSource) fetchedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := slices.Clone(f.fetched)
	slices.Sort(ids)
	return ids
}

func (f *fakeSource) topStoriesCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topCalls
}
