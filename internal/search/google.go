package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/textguard/textguard/pkg/models"
)

const (
	defaultGoogleBaseURL = "https://www.googleapis.com/customsearch/v1"
	defaultMaxResults    = 5
	defaultTimeout       = 15 * time.Second
)

// GoogleClient searches phrases through the Google Custom Search JSON API,
// quoting each phrase for exact matching.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cseID      string
	maxResults int
}

// GoogleOption configures the GoogleClient.
type GoogleOption func(*GoogleClient)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(u string) GoogleOption {
	return func(c *GoogleClient) {
		c.baseURL = u
	}
}

// WithMaxResults sets how many results to request per phrase.
func WithMaxResults(n int) GoogleOption {
	return func(c *GoogleClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) GoogleOption {
	return func(c *GoogleClient) {
		c.httpClient.Timeout = d
	}
}

// NewGoogleClient creates a Custom Search client.
func NewGoogleClient(apiKey, cseID string, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:    defaultGoogleBaseURL,
		apiKey:     apiKey,
		cseID:      cseID,
		maxResults: defaultMaxResults,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements Searcher. A phrase with no results yields an empty slice.
func (c *GoogleClient) Search(ctx context.Context, phrase string) ([]models.SourceMatch, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.cseID)
	q.Set("q", `"`+phrase+`"`)
	q.Set("num", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var gr googleResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	matches := make([]models.SourceMatch, 0, len(gr.Items))
	for _, item := range gr.Items {
		matches = append(matches, models.SourceMatch{
			Title:      item.Title,
			URL:        item.Link,
			Snippet:    item.Snippet,
			SourceType: "web",
		})
	}

	return matches, nil
}
