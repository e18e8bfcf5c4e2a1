package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aewiki/recap-cli/internal/core"
)

// RequestError is returned when a remote endpoint answers with a non-2xx
// status.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("remote error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Client talks to the recap data repository: the directory listing endpoint
// and the per-date snapshot files. Every operation is a single attempt;
// retry policy is the caller's concern.
type Client struct {
	listingURL   string
	snapshotBase string
	httpClient   *http.Client
	verbose      bool
}

// NewClient creates a new repository client. The reference behavior blocks
// indefinitely on a hung fetch; the timeout here is a deliberate hardening
// deviation.
func NewClient(listingURL, snapshotBase string, timeout time.Duration, verbose bool) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		listingURL:   listingURL,
		snapshotBase: snapshotBase,
		httpClient:   &http.Client{Timeout: timeout},
		verbose:      verbose,
	}
}

// log writes a message to stderr if verbose mode is enabled.
func (c *Client) log(msg string) {
	core.Eprint(fmt.Sprintf("[API] %s", msg), c.verbose)
}

// getJSON performs a single GET request and decodes the JSON payload into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	c.log(fmt.Sprintf("GET %s", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	c.log(fmt.Sprintf("Response: HTTP %d, %d bytes", resp.StatusCode, len(body)))

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// ListTree fetches the flat repository listing used to discover which dated
// snapshots exist.
func (c *Client) ListTree(ctx context.Context) ([]TreeEntry, error) {
	var resp treeResponse
	if err := c.getJSON(ctx, c.listingURL, &resp); err != nil {
		return nil, err
	}
	c.log(fmt.Sprintf("Listing returned %d entries", len(resp.Tree)))
	return resp.Tree, nil
}

// SnapshotURL returns the deterministic resource location of a snapshot:
// <base>/<year>/recap-<DateKey>.json.
func (c *Client) SnapshotURL(date string) (string, error) {
	year, _, _, err := core.ParseDateKey(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d/recap-%s.json", c.snapshotBase, year, date), nil
}

// FetchSnapshot retrieves the recap snapshot for the given date key.
func (c *Client) FetchSnapshot(ctx context.Context, date string) (*Snapshot, error) {
	url, err := c.SnapshotURL(date)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := c.getJSON(ctx, url, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
