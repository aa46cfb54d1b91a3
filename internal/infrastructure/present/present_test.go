package present

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/labeling"
	"TweetSentiment/internal/report"
	"TweetSentiment/internal/table"
)

func scoredPresentation(t *testing.T) report.Presentation {
	t.Helper()
	tbl := table.New("id", "raw_text", "clean_text", "compound")
	require.NoError(t, tbl.Append("1", "I LOVE this!", "i love this", "0.6696"))
	require.NoError(t, tbl.Append("2", "so bad", "so bad", "-0.5423"))
	require.NoError(t, tbl.Append("3", "ok then", "ok then", "0.0"))

	res, err := labeling.NewResolver(nil).Resolve(tbl)
	require.NoError(t, err)
	p := report.Build(tbl, res, report.Options{TopTerms: 3})
	p.RunID = "run-42"
	p.Keyword = "go"
	p.Executed = []domain.Stage{domain.StageNormalize, domain.StageScore, domain.StagePresent}
	p.Skipped = []domain.Stage{domain.StageFetch}
	p.Warnings = []string{"fetch failed, continuing with existing raw artifact"}
	return p
}

func TestConsolePresent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, ConsoleOptions{SampleRows: 2}).Present(context.Background(), scoredPresentation(t)))

	out := buf.String()
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "executed: normalize, score, present | skipped: fetch")
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "Total rows in sentiment file: 3")
	assert.Contains(t, out, "Sample (first 2 rows)")
	assert.Contains(t, out, "i love this")
	assert.NotContains(t, out, "ok then |")
	assert.Contains(t, out, "Sentiment distribution")
	assert.Contains(t, out, "33.3% (1)")
	assert.Contains(t, out, "Top terms")
}

func TestConsoleUnresolved(t *testing.T) {
	t.Parallel()

	tbl := table.New("id", "author")
	require.NoError(t, tbl.Append("1", "bob"))
	p := report.Build(tbl, labeling.Resolution{Strategy: labeling.StrategyNone}, report.Options{TopTerms: 3})

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, ConsoleOptions{}).Present(context.Background(), p))
	assert.Contains(t, buf.String(), "Could not find or infer sentiment labels")
	assert.NotContains(t, buf.String(), "Sentiment distribution")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestExporterWritesCSVAndXLSX(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "export")
	exp := NewExporter(ExportOptions{Dir: dir, Formats: []string{FormatCSV, FormatXLSX}}, nil)
	require.NoError(t, exp.Present(context.Background(), scoredPresentation(t)))

	paths := exp.Paths()
	require.Equal(t, []string{
		filepath.Join(dir, "tweets_sentiment.csv"),
		filepath.Join(dir, "tweets_sentiment.xlsx"),
	}, paths)

	csvTable, err := table.LoadFile(paths[0])
	require.NoError(t, err)
	labels, err := csvTable.Column(domain.ColumnLabel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Positive", "Negative", "Neutral"}, labels)

	book, err := xlsx.OpenFile(paths[1])
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 4)
	assert.Equal(t, "label", rows[0].Cells[4].Value)
	assert.Equal(t, "Negative", rows[2].Cells[4].Value)
	assert.Equal(t, "2", rows[2].Cells[0].Value)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExporterUnknownFormat(t *testing.T) {
	t.Parallel()

	exp := NewExporter(ExportOptions{Dir: t.TempDir(), Formats: []string{"parquet"}}, nil)
	assert.Error(t, exp.Present(context.Background(), scoredPresentation(t)))
}
