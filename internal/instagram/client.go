// Package instagram is a minimal client for Instagram's undocumented public
// content API.
package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://www.instagram.com"

// GraphQL query ids for the two paged queries the proxy issues.
const (
	UserTimelineQueryID = "17888483320059182"
	TagMediaQueryID     = "17875800862117404"
)

// Query describes a single upstream request: a path on the Instagram host
// plus its query parameters. Built once, fetched once.
type Query struct {
	Path   string
	Params url.Values
}

// Client fetches content from the Instagram public API. One best-effort
// attempt per request: no retries and no timeout beyond what the transport
// and the caller's context impose.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Instagram API client. If baseURL is empty, it
// defaults to https://www.instagram.com.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Fetch issues one GET for the given query and returns the full response
// body. The body is buffered to completion before returning; it is not
// parsed or validated here — that is the caller's job.
func (c *Client) Fetch(ctx context.Context, q Query) ([]byte, error) {
	target := c.baseURL + q.Path
	if len(q.Params) > 0 {
		target += "?" + q.Params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

// truncate returns the first n characters of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
