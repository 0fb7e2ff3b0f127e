package hn

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

// ItemGetter fetches a single item by id.
type ItemGetter interface {
	GetItem(ctx context.Context, id int) (*Item, error)
}

type Client struct {
	http    *http.Client
	baseURL string
	sem     chan struct{} // nil means no concurrency limit
	sf      singleflight.Group
}

type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-request timeout. Zero leaves it to the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMaxInFlight caps the number of concurrent requests. Zero or less keeps
// the fan-out unbounded.
func WithMaxInFlight(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		} else {
			c.sem = nil
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) acquire(ctx context.Context) error {
	if c.sem == nil {
		return ctx.Err()
	}
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.sem != nil {
		<-c.sem
	}
}

// fetch issues a GET for url and decodes the JSON body into v.
func (c *Client) fetch(ctx context.Context, op, url string, v any) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: op, URL: url, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &FetchError{Op: op, URL: url, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// TopStories returns the first limit top story IDs. The API always returns
// the full list, so the truncation happens here. A limit of zero or less
// returns every id.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int, error) {
	var ids []int
	if err := c.fetch(ctx, "fetch top stories", c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// GetItem fetches a single HN item by ID. Concurrent calls for the same id
// share one request. An id the API reports as missing yields a zero Item.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	v, err, _ := c.sf.Do(strconv.Itoa(id), func() (interface{}, error) {
		var item Item
		url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
		if err := c.fetch(ctx, fmt.Sprintf("fetch item %d", id), url, &item); err != nil {
			return nil, err
		}
		return &item, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Item), nil
}

// GetItems fetches multiple items concurrently and returns them in order.
func (c *Client) GetItems(ctx context.Context, ids []int) ([]*Item, error) {
	return GetItems(ctx, c, ids)
}

// GetItems fetches every id through g at once, one goroutine per id, and
// returns the items in the order of ids. The first failure cancels the rest
// of the batch and is returned.
func GetItems(ctx context.Context, g ItemGetter, ids []int) ([]*Item, error) {
	results := make([]*Item, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			item, err := g.GetItem(ctx, id)
			if err != nil {
				return err
			}
			results[i] = item
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
