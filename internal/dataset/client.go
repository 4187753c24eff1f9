package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/csdemo/siteview/pkg/core"
)

// Client fetches dataset documents over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout uses 30 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the dataset at url. Failures are returned to the
// caller as is; there is no retry.
func (c *Client) Fetch(ctx context.Context, url string) (*core.DemoDataset, *Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("dataset request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset response: %w", err)
	}

	ds, report, err := Decode(body)
	if err != nil {
		return nil, report, err
	}
	return ds, report, nil
}
