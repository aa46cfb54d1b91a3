package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"TweetSentiment/internal/domain"
)

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	u, err := buildPageURL("https://search.example.org/s?q={query}&p={page}", "go lang", 3)
	if err != nil {
		t.Fatalf("buildPageURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Host != "search.example.org" {
		t.Fatalf("unexpected host: %s", parsed.Host)
	}

	q := parsed.Query()
	if q.Get("q") != "go lang" {
		t.Fatalf("expected q=go lang, got %s", q.Get("q"))
	}
	if q.Get("p") != "3" {
		t.Fatalf("expected p=3, got %s", q.Get("p"))
	}

	if _, err := buildPageURL("/relative?q={query}", "x", 1); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestParseItem(t *testing.T) {
	t.Parallel()

	html := `
	<ol>
	  <li class="post" data-id="42"><span class="body">  Loving   the new
	  release! </span><span class="meta">2h</span></li>
	  <li class="post"><span class="body">no id here</span></li>
	  <li class="post" data-id="7"><span class="body"> </span></li>
	</ol>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	items := doc.Find("li.post")

	post, ok := parseItem(items.Eq(0), ".body", "data-id")
	if !ok {
		t.Fatalf("expected first item to parse")
	}
	if post.ID != "42" || post.Text != "Loving the new release!" {
		t.Fatalf("unexpected post: %+v", post)
	}

	post, ok = parseItem(items.Eq(1), ".body", "data-id")
	if !ok || len(post.ID) != 16 {
		t.Fatalf("expected derived id, got %+v", post)
	}
	again, _ := parseItem(items.Eq(1), ".body", "data-id")
	if again.ID != post.ID {
		t.Fatalf("derived id is not stable: %s vs %s", again.ID, post.ID)
	}

	if _, ok := parseItem(items.Eq(2), ".body", "data-id"); ok {
		t.Fatalf("expected empty item to be skipped")
	}
}

func TestHTMLSourceSearchPages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `<div class="p" id="a"><p>first</p></div><div class="p" id="b"><p>second</p></div>`)
		case "2":
			fmt.Fprint(w, `<div class="p" id="b"><p>second</p></div><div class="p" id="c"><p>third</p></div>`)
		default:
			fmt.Fprint(w, `<html></html>`)
		}
	}))
	defer server.Close()

	src := NewHTMLSource(server.Client(), HTMLOptions{
		URLTemplate:  server.URL + "/search?q={query}&page={page}",
		ItemSelector: "div.p",
		TextSelector: "p",
		IDAttribute:  "id",
	}, nil)

	posts, err := src.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[2].ID != "c" || posts[2].Text != "third" {
		t.Fatalf("unexpected last post: %+v", posts[2])
	}

	limited, err := src.Search(context.Background(), "golang", 1)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "a" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestHTMLSourceSinglePage(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `<ul><li>one</li><li>two</li></ul>`)
	}))
	defer server.Close()

	src := NewHTMLSource(server.Client(), HTMLOptions{
		URLTemplate:  server.URL + "/?q={query}",
		ItemSelector: "li",
	}, nil)

	posts, err := src.Search(context.Background(), "x", 10)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); len(posts) != 2 || n != 1 {
		t.Fatalf("expected 2 posts from 1 call, got %d posts from %d calls", len(posts), n)
	}
}

func TestHTMLSourceErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "slow") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewHTMLSource(server.Client(), HTMLOptions{URLTemplate: server.URL + "/?q={query}", ItemSelector: "li"}, nil)

	_, err := src.Search(context.Background(), "slow", 5)
	if !eris.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}

	_, err = src.Search(context.Background(), "other", 5)
	if !eris.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected fetch failed error, got %v", err)
	}

	_, err = NewHTMLSource(nil, HTMLOptions{}, nil).Search(context.Background(), "x", 5)
	if !eris.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected misconfiguration error, got %v", err)
	}
}
