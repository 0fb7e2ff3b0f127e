package worker

import (
	"cmp"
	"slices"
	"strings"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
)

// Commenter is an author and the number of comments they wrote.
type Commenter struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// SortByHighestScore returns a copy of stories ordered by score, highest
// first. Equal scores fall back to alphabetical title order.
func SortByHighestScore(stories []*hn.Item) []*hn.Item {
	sorted := slices.Clone(stories)
	slices.SortStableFunc(sorted, compareStories)
	return sorted
}

func compareStories(a, b *hn.Item) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

// TallyComments counts comments per author across all collections. Deleted
// comments and comments without an author are skipped.
func TallyComments(collections ...[]*hn.Item) map[string]int {
	tally := make(map[string]int)
	for _, comments := range collections {
		for _, c := range comments {
			if c == nil || c.Deleted || c.By == "" {
				continue
			}
			tally[c.By]++
		}
	}
	return tally
}

// TopCommenters ranks authors by comment count, highest first, ties broken
// by name, and keeps at most n of them.
func TopCommenters(tally map[string]int, n int) []Commenter {
	ranked := make([]Commenter, 0, len(tally))
	for name, count := range tally {
		ranked = append(ranked, Commenter{Name: name, Count: count})
	}
	slices.SortFunc(ranked, func(a, b Commenter) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopTenCommenters flattens the per-story comment collections and returns the
// ten most active authors.
func TopTenCommenters(collections [][]*hn.Item) []Commenter {
	return TopCommenters(TallyComments(collections...), 10)
}
