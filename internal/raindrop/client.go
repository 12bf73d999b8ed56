// Package raindrop fetches the collection tree and item list from the
// Raindrop.io REST API and persists them as a single JSON snapshot. Every
// sync replaces the snapshot wholesale; no identity is carried across syncs.
package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentic-research/tabdex/internal/logger"
	"golang.org/x/sync/errgroup"
)

// pageSize is the API's maximum items-per-page. Pagination stops on the
// first short page; the server is trusted to return a short page only last.
const pageSize = 50

// Collection is one node of the two-tier collection tree. Root collections
// have no parent reference.
type Collection struct {
	ID     int64      `json:"_id"`
	Title  string     `json:"title"`
	Parent *ParentRef `json:"parent,omitempty"`
}

// ParentRef points at a collection's parent.
type ParentRef struct {
	ID int64 `json:"$id"`
}

// Item is one bookmark ("raindrop") belonging to a collection.
type Item struct {
	ID         int64         `json:"_id"`
	Title      string        `json:"title"`
	Link       string        `json:"link"`
	Collection CollectionRef `json:"collection"`
}

// CollectionRef points at the collection an item belongs to.
type CollectionRef struct {
	ID int64 `json:"$id"`
}

// Snapshot is the remote cache document, fully overwritten on each sync.
// FetchedAt is RFC3339 so the document round-trips byte-exact.
type Snapshot struct {
	FetchedAt   string       `json:"fetchedAt"`
	Collections []Collection `json:"collections"`
	Raindrops   []Item       `json:"raindrops"`
}

// StatusError reports a non-2xx API response with the offending body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("raindrop api returned %d: %s", e.Code, e.Body)
}

// Client talks to the Raindrop.io REST API with a bearer token. The base URL
// is injectable so tests can point it at a local server.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     logger.Logger
}

func NewClient(baseURL, token string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// FetchAll retrieves root collections, child collections and the full
// paginated item sweep concurrently, then merges them into a Snapshot.
// Any request failing aborts the whole fetch; there is no partial merge.
func (c *Client) FetchAll(ctx context.Context) (*Snapshot, error) {
	var (
		roots    []Collection
		children []Collection
		items    []Item
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roots, err = c.fetchCollections(ctx, "/collections")
		return err
	})
	g.Go(func() error {
		var err error
		children, err = c.fetchCollections(ctx, "/collections/childrens")
		return err
	})
	g.Go(func() error {
		var err error
		items, err = c.fetchItems(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Info("raindrop fetch complete",
		logger.Int("collections", len(roots)+len(children)),
		logger.Int("items", len(items)))

	// Roots first, then children; normalization relies on nothing beyond
	// that relative order.
	return &Snapshot{
		FetchedAt:   time.Now().UTC().Format(time.RFC3339),
		Collections: append(roots, children...),
		Raindrops:   items,
	}, nil
}

func (c *Client) fetchCollections(ctx context.Context, path string) ([]Collection, error) {
	var payload struct {
		Items []Collection `json:"items"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// fetchItems sweeps the global item listing page by page until a page comes
// back shorter than pageSize.
func (c *Client) fetchItems(ctx context.Context) ([]Item, error) {
	var all []Item
	for page := 0; ; page++ {
		var payload struct {
			Items []Item `json:"items"`
		}
		path := fmt.Sprintf("/raindrops/0?perpage=%d&page=%d", pageSize, page)
		if err := c.get(ctx, path, &payload); err != nil {
			return nil, err
		}
		all = append(all, payload.Items...)
		if len(payload.Items) < pageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }() // safe to ignore

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}
	return nil
}
