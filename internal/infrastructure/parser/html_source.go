// Package parser scrapes posts from HTML search result pages.
package parser

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
)

const (
	queryPlaceholder = "{query}"
	pagePlaceholder  = "{page}"

	defaultMaxPages = 20
)

// HTMLOptions describe where the posts live on a search page.
type HTMLOptions struct {
	// URLTemplate contains {query} and optionally {page} (1-based).
	URLTemplate  string
	ItemSelector string
	// TextSelector is relative to an item; empty uses the item text.
	TextSelector string
	// IDAttribute is read from the item; empty derives an id from the text.
	IDAttribute string
	MaxPages    int
	UserAgent   string
}

// HTMLSource crawls search pages and extracts posts with CSS selectors.
type HTMLSource struct {
	client *http.Client
	opts   HTMLOptions
	logger *zap.Logger
}

var _ ports.PostSource = (*HTMLSource)(nil)

// NewHTMLSource wires an HTTP client; MaxPages defaults to 20.
func NewHTMLSource(client *http.Client, opts HTMLOptions, logger *zap.Logger) *HTMLSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "TweetSentiment/1.0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLSource{client: client, opts: opts, logger: logger}
}

// Name identifies the strategy inside the registry.
func (h *HTMLSource) Name() string {
	return "html"
}

// Search walks result pages until count posts are found, a page yields
// nothing new, or the template has no page placeholder.
func (h *HTMLSource) Search(ctx context.Context, keyword string, count int) ([]domain.Post, error) {
	if h.opts.URLTemplate == "" || h.opts.ItemSelector == "" {
		return nil, eris.Wrap(domain.ErrFetchFailed, "html source needs url template and item selector")
	}

	paged := strings.Contains(h.opts.URLTemplate, pagePlaceholder)
	results := make([]domain.Post, 0, count)
	seen := map[string]struct{}{}

	for page := 1; page <= h.opts.MaxPages && len(results) < count; page++ {
		pageURL, err := buildPageURL(h.opts.URLTemplate, keyword, page)
		if err != nil {
			return nil, err
		}

		doc, err := h.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, eris.Wrapf(err, "page %d", page)
		}

		added := 0
		for _, post := range h.extractPosts(doc) {
			if _, ok := seen[post.ID]; ok {
				continue
			}
			seen[post.ID] = struct{}{}
			results = append(results, post)
			added++
			if len(results) == count {
				break
			}
		}
		h.logger.Debug("html page parsed", zap.Int("page", page), zap.Int("added", added))

		if !paged || added == 0 {
			break
		}
	}

	return results, nil
}

func (h *HTMLSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, eris.Wrapf(domain.ErrRateLimited, "search page returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Wrapf(domain.ErrFetchFailed, "search page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, "parse document: "+err.Error())
	}
	return doc, nil
}

func (h *HTMLSource) extractPosts(doc *goquery.Document) []domain.Post {
	var posts []domain.Post
	doc.Find(h.opts.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		if post, ok := parseItem(item, h.opts.TextSelector, h.opts.IDAttribute); ok {
			posts = append(posts, post)
		}
	})
	return posts
}

func parseItem(item *goquery.Selection, textSelector, idAttr string) (domain.Post, bool) {
	textSel := item
	if textSelector != "" {
		textSel = item.Find(textSelector).First()
	}
	text := strings.Join(strings.Fields(textSel.Text()), " ")
	if text == "" {
		return domain.Post{}, false
	}

	id := ""
	if idAttr != "" {
		id = strings.TrimSpace(item.AttrOr(idAttr, ""))
	}
	if id == "" {
		sum := sha1.Sum([]byte(text))
		id = hex.EncodeToString(sum[:8])
	}
	return domain.Post{ID: id, Text: text}, true
}

func buildPageURL(template, keyword string, page int) (string, error) {
	raw := strings.ReplaceAll(template, queryPlaceholder, url.QueryEscape(strings.TrimSpace(keyword)))
	raw = strings.ReplaceAll(raw, pagePlaceholder, strconv.Itoa(page))

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrapf(err, "invalid search url %s", raw)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", eris.Errorf("search url %s is not absolute", raw)
	}
	return parsed.String(), nil
}
