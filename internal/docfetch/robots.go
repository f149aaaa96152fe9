package docfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsCacheDuration = time.Hour

type robotsEntry struct {
	robots    *robotstxt.RobotsData
	fetchTime time.Time
}

// robotsCache fetches robots.txt once per scheme+host and caches the
// parsed rules.
type robotsCache struct {
	client    *http.Client
	userAgent string

	mu      sync.Mutex
	entries map[string]robotsEntry
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		entries:   make(map[string]robotsEntry),
	}
}

// Allowed reports whether the user agent may fetch u. A robots.txt that
// cannot be fetched allows everything.
func (c *robotsCache) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	robots, err := c.get(ctx, u)
	if err != nil {
		return false, err
	}
	if robots == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return robots.TestAgent(path, c.userAgent), nil
}

func (c *robotsCache) get(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	origin := u.Scheme + "://" + u.Host

	c.mu.Lock()
	entry, ok := c.entries[origin]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchTime) < robotsCacheDuration {
		return entry.robots, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	var robots *robotstxt.RobotsData
	resp, err := c.client.Do(req)
	if err == nil {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
		resp.Body.Close()
		if readErr == nil {
			robots, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
			if err != nil {
				robots = nil
			}
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.mu.Lock()
	c.entries[origin] = robotsEntry{robots: robots, fetchTime: time.Now()}
	c.mu.Unlock()
	return robots, nil
}
