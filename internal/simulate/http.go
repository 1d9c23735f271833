package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// httpClient wraps http.Client with context-aware JSON helpers.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// getJSON fetches path and decodes a 200 response into v.
func (c *httpClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// postVisit posts one page view and returns the response status code.
func (c *httpClient) postVisit(ctx context.Context, v Visit) (int, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal visit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/visits", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post visit: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// submitVisits posts visits with at most concurrency requests in flight and
// tallies the outcomes into stats. Transport failures are counted, not fatal.
func submitVisits(ctx context.Context, c *httpClient, visits []Visit, concurrency int, stats *Stats) error {
	var submitted, accepted, duplicate, limited, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))
	for _, v := range visits {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			code, err := c.postVisit(gctx, v)
			submitted.Add(1)
			switch {
			case err != nil:
				failed.Add(1)
			case code == http.StatusAccepted:
				accepted.Add(1)
			case code == http.StatusOK:
				duplicate.Add(1)
			case code == http.StatusTooManyRequests:
				limited.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.RateLimited = int(limited.Load())
	stats.Failed = int(failed.Load())

	if err != nil {
		return fmt.Errorf("submit visits: %w", err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("submit visits: %w", ctx.Err())
	}
	return nil
}
