package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TweetSentiment/internal/config"
	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/labeling"
	"TweetSentiment/internal/table"
	"TweetSentiment/internal/usecase"
)

const searchPage = `<html><body><ul>
<li class="post" data-id="1">I love this, what a great day!</li>
<li class="post" data-id="2">This is terrible and awful.</li>
</ul></body></html>`

func newApplication(t *testing.T) (*Application, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(searchPage))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
storage:
  dataDir: %[1]s/data
source:
  name: html
  html:
    urlTemplate: %[2]s/search?q={query}
    itemSelector: li.post
    idAttribute: data-id
presentation:
  exportDir: %[1]s/export
  exportFormats: [csv]
history:
  dsn: %[1]s/history.db
`, dir, server.URL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := New(context.Background(), cfg, nil, Options{Out: &out, HTTPClient: server.Client()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

func TestRunEndToEnd(t *testing.T) {
	a, out := newApplication(t)
	ctx := context.Background()

	rep, err := a.Run(ctx, usecase.Request{Keyword: "day", Count: 5, UseCached: true})
	require.NoError(t, err)

	assert.Equal(t, []domain.Stage{domain.StageFetch, domain.StageNormalize, domain.StageScore, domain.StagePresent}, rep.Executed)
	assert.Equal(t, labeling.StrategyCompound, rep.Presentation.Resolution.Strategy)
	assert.Equal(t, []domain.Label{domain.LabelPositive, domain.LabelNegative}, rep.Presentation.Resolution.Labels)
	assert.Contains(t, out.String(), "Total rows in sentiment file: 2")

	exported, err := table.LoadFile(filepath.Join(a.Config().Presentation.ExportDir, "tweets_sentiment.csv"))
	require.NoError(t, err)
	assert.True(t, exported.Has(domain.ColumnLabel))

	// The second run reuses the cached raw artifact.
	rep, err = a.Run(ctx, usecase.Request{Count: 5, UseCached: true, Resume: true})
	require.NoError(t, err)
	assert.Equal(t, []domain.Stage{domain.StageFetch, domain.StageNormalize, domain.StageScore}, rep.Skipped)

	runs, err := a.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, domain.RunSucceeded, run.Status)
	}
}

func TestLabelAndScore(t *testing.T) {
	a, _ := newApplication(t)

	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,sentiment\n1,Positive\n2,Negative\n3,Positive\n"), 0o644))

	p, err := a.Label(path)
	require.NoError(t, err)
	assert.Equal(t, labeling.StrategyExplicit, p.Resolution.Strategy)
	require.Len(t, p.Distribution, 2)
	assert.Equal(t, 2, p.Distribution[0].Count)

	_, err = a.Label(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	bundle, label := a.Score("What a wonderful, happy day")
	assert.Greater(t, bundle.Compound, 0.05)
	assert.Equal(t, domain.LabelPositive, label)
}

func TestWatchRunsUntilCancelled(t *testing.T) {
	a, _ := newApplication(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		errc <- a.Watch(ctx, usecase.Request{Keyword: "day", Count: 2}, 20*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		runs, err := a.History(context.Background(), 10)
		return err == nil && len(runs) >= 2 && runs[1].Status == domain.RunSucceeded
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}
