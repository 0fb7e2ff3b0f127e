package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
	"github.com/danielmmetz/hn-client/leaderboard/render"
)

const (
	fatalMessage    = "Looks like something went wrong while aggregating the data. Maybe a human will be able to do something about it."
	slowMessage     = "The API seems to be slow right now. Hang on, we're still waiting for results."
	progressMessage = "Getting stories..."
)

// Source is the read side of the HN API the runner needs.
type Source interface {
	hn.ItemGetter
	TopStories(ctx context.Context, limit int) ([]int, error)
}

type Options struct {
	Limit      int           // top stories kept
	Top        int           // commenters ranked
	MaxRetries int           // reruns after a transient fetch failure
	RetryDelay time.Duration // wait before each rerun
	SlowAfter  time.Duration // one-time slow API advisory, 0 disables
	Format     render.Format
}

// DefaultOptions returns thirty stories, ten commenters and three retries
// 1.5s apart, with the slow notice after 8s.
func DefaultOptions() Options {
	return Options{
		Limit:      30,
		Top:        10,
		MaxRetries: 3,
		RetryDelay: 1500 * time.Millisecond,
		SlowAfter:  8 * time.Second,
		Format:     render.FormatTable,
	}
}

// Runner produces the top stories and top commenters report.
type Runner struct {
	source Source
	walker *Walker
	opts   Options
	stdout io.Writer
	stderr io.Writer
}

func NewRunner(source Source, opts Options, stdout, stderr io.Writer) *Runner {
	return &Runner{
		source: source,
		walker: NewWalker(source),
		opts:   opts,
		stdout: &lockedWriter{w: stdout},
		stderr: stderr,
	}
}

// Run builds and prints the report. Transient fetch failures rerun the whole
// build up to MaxRetries times; anything else, or running out of retries,
// prints the fatal diagnostic to stderr and returns the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	stop := r.warnWhenSlow(log)
	defer stop()

	for retries := 0; ; retries++ {
		fmt.Fprintln(r.stdout, progressMessage)
		start := time.Now()

		report, err := r.Build(ctx)
		if err == nil {
			stop()
			report.RunID = runID
			log.Info("report complete",
				"stories", len(report.Stories),
				"comments", report.TotalComments,
				"retries", retries,
				"elapsed", time.Since(start))
			if err := report.Write(r.stdout, r.opts.Format); err != nil {
				return nil, fmt.Errorf("write report: %w", err)
			}
			return report, nil
		}

		if hn.IsTransient(err) && retries < r.opts.MaxRetries && ctx.Err() == nil {
			log.Warn("transient fetch failure", "attempt", retries+1, "error", err)
			fmt.Fprintf(r.stdout, "Hmm. Looks like the API didn't want us to get results back. We're gonna retry in %s. (%d out of %d).\n",
				r.opts.RetryDelay, retries+1, r.opts.MaxRetries)
			if err := sleep(ctx, r.opts.RetryDelay); err != nil {
				return nil, r.fail(log, err, retries+1)
			}
			continue
		}

		return nil, r.fail(log, err, retries)
	}
}

func (r *Runner) fail(log *slog.Logger, err error, retries int) error {
	log.Error("report failed", "retries", retries, "error", err)
	fmt.Fprintln(r.stderr, fatalMessage)
	fmt.Fprintln(r.stderr, err)
	return err
}

// warnWhenSlow prints the slow API advisory once if the run is still going
// after SlowAfter. The returned func stops the timer.
func (r *Runner) warnWhenSlow(log *slog.Logger) func() {
	if r.opts.SlowAfter <= 0 {
		return func() {}
	}
	t := time.AfterFunc(r.opts.SlowAfter, func() {
		log.Warn("run is slow", "after", r.opts.SlowAfter)
		fmt.Fprintln(r.stdout, slowMessage)
	})
	return func() { t.Stop() }
}

// Build fetches the top stories, ranks them, walks every comment tree and
// ranks the commenters. It makes a single attempt.
func (r *Runner) Build(ctx context.Context) (*Report, error) {
	ids, err := r.source.TopStories(ctx, r.opts.Limit)
	if err != nil {
		return nil, err
	}

	stories, err := hn.GetItems(ctx, r.source, ids)
	if err != nil {
		return nil, err
	}
	stories = SortByHighestScore(stories)
	slog.Debug("fetched top stories", "count", len(stories))

	comments := make([][]*hn.Item, len(stories))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, story := range stories {
		i, story := i, story
		eg.Go(func() error {
			items, err := r.walker.Walk(egCtx, story.Children())
			if err != nil {
				return fmt.Errorf("walk comments of story %d: %w", story.ID, err)
			}
			comments[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tally := TallyComments(comments...)
	report := &Report{
		GeneratedAt:   time.Now().UTC(),
		Stories:       make([]StoryRow, len(stories)),
		TopCommenters: TopCommenters(tally, r.opts.Top),
	}
	for i, story := range stories {
		report.Stories[i] = newStoryRow(story, comments[i])
	}
	for _, n := range tally {
		report.TotalComments += n
	}
	return report, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// lockedWriter serializes writes from the run loop and the slow advisory.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
