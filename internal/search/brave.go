// Package search implements the web enrichment client against the Brave
// Search API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

// MaxResults is the fixed cap on returned snippets.
const MaxResults = 5

// requestTimeout bounds the whole search call.
const requestTimeout = 20 * time.Second

// Result is one web result snippet, passed through to the synthesis prompt
// unmodified.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Client queries the Brave Search API. An API key is required via the
// X-Subscription-Token header.
type Client struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewClient constructs a Brave search client.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// NewClientWithHTTP constructs a client using the supplied HTTP client.
// Useful for overriding the default timeout in tests.
func NewClientWithHTTP(apiKey string, client *http.Client) *Client {
	return &Client{APIKey: apiKey, BaseURL: defaultBaseURL, client: client}
}

// Search executes one query and returns at most MaxResults snippets.
// A non-success upstream status is an error; there is no retry.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("brave: API key is missing")
	}

	endpoint := c.BaseURL + "?q=" + url.QueryEscape(query) + "&count=" + strconv.Itoa(MaxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave http %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []Result `json:"results"`
		} `json:"web"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := payload.Web.Results
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	return results, nil
}
