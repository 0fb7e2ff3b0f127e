package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
)

func ids(items []*hn.Item) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestWalkReturnsAllDescendants(t *testing.T) {
	root := &hn.Item{ID: 1, Kids: []int{2, 3}}
	src := newFakeSource(nil,
		root,
		&hn.Item{ID: 2, Kids: []int{}},
		&hn.Item{ID: 3, Kids: []int{4}},
		&hn.Item{ID: 4},
	)

	items, err := NewWalker(src).Walk(context.Background(), root.Children())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, ids(items))
	assert.Equal(t, []int{2, 3, 4}, src.fetchedIDs(), "root must not be fetched again")
}

func TestWalkLevelOrder(t *testing.T) {
	src := newFakeSource(nil,
		&hn.Item{ID: 10, Kids: []int{12, 11}},
		&hn.Item{ID: 20, Kids: []int{21}},
		&hn.Item{ID: 11, Kids: []int{13}},
		&hn.Item{ID: 12},
		&hn.Item{ID: 21},
		&hn.Item{ID: 13},
	)

	items, err := NewWalker(src).Walk(context.Background(), []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 12, 11, 21, 13}, ids(items))
}

func TestWalkTraversesDeletedComments(t *testing.T) {
	src := newFakeSource(nil,
		&hn.Item{ID: 2, Deleted: true, Kids: []int{3}},
		&hn.Item{ID: 3, By: "alive"},
	)

	items, err := NewWalker(src).Walk(context.Background(), []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids(items))
}

func TestWalkEmpty(t *testing.T) {
	src := newFakeSource(nil)

	items, err := NewWalker(src).Walk(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, src.fetchedIDs())
}

func TestWalkToleratesMissingItems(t *testing.T) {
	src := newFakeSource(nil, &hn.Item{ID: 2, Kids: []int{99}})

	items, err := NewWalker(src).Walk(context.Background(), []int{2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[1].Missing())
}

func TestWalkFailsOnAnyError(t *testing.T) {
	src := newFakeSource(nil,
		&hn.Item{ID: 2, Kids: []int{3, 4}},
		&hn.Item{ID: 3},
		&hn.Item{ID: 4},
	)
	boom := &hn.FetchError{Op: "fetch item 4", URL: "/item/4.json", Err: errors.New("connection reset")}
	src.itemErrs[4] = boom

	items, err := NewWalker(src).Walk(context.Background(), []int{2})
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, boom)
}
