package worker

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
	"github.com/danielmmetz/hn-client/leaderboard/render"
)

// StoryRow is one ranked top story.
type StoryRow struct {
	ID       int    `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Score    int    `json:"score" yaml:"score"`
	Comments int    `json:"comments" yaml:"comments"`
}

// Report is the outcome of one run.
type Report struct {
	RunID         string      `json:"run_id" yaml:"run_id"`
	GeneratedAt   time.Time   `json:"generated_at" yaml:"generated_at"`
	Stories       []StoryRow  `json:"stories" yaml:"stories"`
	TopCommenters []Commenter `json:"top_commenters" yaml:"top_commenters"`
	TotalComments int         `json:"total_comments" yaml:"total_comments"`
}

func newStoryRow(story *hn.Item, comments []*hn.Item) StoryRow {
	n := 0
	for _, count := range TallyComments(comments) {
		n += count
	}
	return StoryRow{ID: story.ID, Title: story.Title, Score: story.Score, Comments: n}
}

// Write prints the report to w in the given format.
func (r *Report) Write(w io.Writer, format render.Format) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, r)
	case render.FormatYAML:
		return render.WriteYAML(w, r)
	case render.FormatTable, "":
		return r.writeTables(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func (r *Report) writeTables(w io.Writer) error {
	stories := make([][]string, len(r.Stories))
	for i, s := range r.Stories {
		stories[i] = []string{s.Title, strconv.Itoa(s.Score)}
	}
	commenters := make([][]string, len(r.TopCommenters))
	for i, c := range r.TopCommenters {
		commenters[i] = []string{c.Name, strconv.Itoa(c.Count)}
	}

	_, err := fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n%s\n%s\n%s\n%s\n",
		"=================================================",
		"List of the top stories on hacker news right now.",
		"==================================================",
		render.Table([]string{"Story title", "Score"}, stories),
		"=================================================================================",
		"List of all top commenters and their total comments across the top stories above.",
		"=================================================================================",
		render.Table([]string{"User name", "Total comments"}, commenters),
	)
	return err
}
