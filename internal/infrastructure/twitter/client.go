// Package twitter searches recent posts through the X API v2.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
)

const (
	// DefaultBaseURL is the public API host.
	DefaultBaseURL = "https://api.twitter.com"

	searchPath = "/2/tweets/search/recent"

	// The recent-search endpoint accepts max_results in this range.
	minPageSize = 10
	maxPageSize = 100
)

// Options configures the client.
type Options struct {
	BaseURL     string
	BearerToken string
	Language    string
	PageSize    int
	// RequestsPerSecond paces page requests; zero disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client implements ports.PostSource over the recent-search endpoint.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ ports.PostSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets one with opts.Timeout.
func NewClient(opts Options, httpClient *http.Client, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.PageSize < minPageSize || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		http:    httpClient,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Name identifies the source inside the registry.
func (c *Client) Name() string {
	return "twitter"
}

type searchResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Query builds the search expression for a keyword: original posts only,
// in the configured language.
func (c *Client) Query(keyword string) string {
	return fmt.Sprintf("%s -is:retweet lang:%s", strings.TrimSpace(keyword), c.opts.Language)
}

// Search pages through results until count posts are collected or the
// API has no more pages.
func (c *Client) Search(ctx context.Context, keyword string, count int) ([]domain.Post, error) {
	if c.opts.BearerToken == "" {
		return nil, eris.Wrap(domain.ErrFetchFailed, "bearer token is not configured")
	}
	if count <= 0 {
		return nil, nil
	}

	query := c.Query(keyword)
	posts := make([]domain.Post, 0, count)
	next := ""

	for len(posts) < count {
		pageSize := count - len(posts)
		if pageSize > c.opts.PageSize {
			pageSize = c.opts.PageSize
		}
		if pageSize < minPageSize {
			pageSize = minPageSize
		}

		page, err := c.page(ctx, query, pageSize, next)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Data {
			posts = append(posts, domain.Post{ID: item.ID, Text: item.Text})
		}

		c.logger.Debug("search page fetched",
			zap.Int("results", len(page.Data)),
			zap.Int("collected", len(posts)),
			zap.Bool("has_next", page.Meta.NextToken != ""))

		if page.Meta.NextToken == "" || len(page.Data) == 0 {
			break
		}
		next = page.Meta.NextToken
	}

	if len(posts) > count {
		posts = posts[:count]
	}
	return posts, nil
}

func (c *Client) page(ctx context.Context, query string, pageSize int, next string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	endpoint, err := url.Parse(strings.TrimSuffix(c.opts.BaseURL, "/") + searchPath)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid base url %s", c.opts.BaseURL)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(pageSize))
	if next != "" {
		params.Set("next_token", next)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.BearerToken)
	req.Header.Set("User-Agent", "TweetSentiment/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		reset := resp.Header.Get("x-rate-limit-reset")
		return nil, eris.Wrapf(domain.ErrRateLimited, "recent search returned %s (reset %s)", resp.Status, reset)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Wrapf(domain.ErrFetchFailed, "recent search returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, "decode search response: "+err.Error())
	}
	if len(page.Data) == 0 && len(page.Errors) > 0 {
		return nil, eris.Wrapf(domain.ErrFetchFailed, "recent search error: %s", page.Errors[0].Detail)
	}
	return &page, nil
}
