// Package mirror pushes section blobs to the remote API. Synchronization
// is best-effort: failures are logged by the outbox and the local store
// remains the source of truth. There is no retry queue and no
// reconciliation; concurrent writers against the same section are
// last-write-wins.
package mirror

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 5 * time.Second

// Client mirrors section blobs to PUT {base}/api/state/{section}.
type Client struct {
	base string
	http *http.Client
}

// New creates a mirror client for the given base URL.
func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Put implements store.Sink.
func (c *Client) Put(section string, data []byte) error {
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/state/%s", c.base, section), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("mirror request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mirror put %s: %w", section, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mirror put %s: status %d", section, resp.StatusCode)
	}
	return nil
}

// Healthy pings the remote health endpoint.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.base + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
