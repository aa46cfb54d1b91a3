package present

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/report"
	"TweetSentiment/internal/table"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportOptions select where and how the labeled table is written.
type ExportOptions struct {
	Dir      string
	BaseName string
	Formats  []string
}

// Exporter writes the sentiment table with its resolved label column.
type Exporter struct {
	opts   ExportOptions
	logger *zap.Logger
}

var _ ports.Presenter = (*Exporter)(nil)

// NewExporter builds an exporter; BaseName defaults to tweets_sentiment and
// Formats to csv.
func NewExporter(opts ExportOptions, logger *zap.Logger) *Exporter {
	if opts.BaseName == "" {
		opts.BaseName = "tweets_sentiment"
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatCSV}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{opts: opts, logger: logger}
}

// Paths returns the files the exporter writes, in format order.
func (e *Exporter) Paths() []string {
	paths := make([]string, 0, len(e.opts.Formats))
	for _, f := range e.opts.Formats {
		paths = append(paths, filepath.Join(e.opts.Dir, e.opts.BaseName+"."+strings.ToLower(f)))
	}
	return paths
}

// Present writes every configured format.
func (e *Exporter) Present(ctx context.Context, p report.Presentation) error {
	labeled, err := p.Labeled()
	if err != nil {
		return eris.Wrap(err, "label table for export")
	}
	if err := os.MkdirAll(e.opts.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "create export dir %s", e.opts.Dir)
	}

	for i, format := range e.opts.Formats {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := e.Paths()[i]
		switch strings.ToLower(format) {
		case FormatCSV:
			err = table.SaveFile(path, labeled)
		case FormatXLSX:
			err = writeXLSX(path, labeled)
		default:
			err = eris.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return eris.Wrapf(err, "export %s", format)
		}
		e.logger.Info("exported", zap.String("path", path), zap.Int("rows", labeled.Len()))
	}
	return nil
}

var numericColumns = map[string]struct{}{
	domain.ColumnCompound: {},
	domain.ColumnNeg:      {},
	domain.ColumnNeu:      {},
	domain.ColumnPos:      {},
	domain.ColumnPolarity: {},
}

func writeXLSX(path string, t *table.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("sentiment")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	columns := t.Columns()
	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}

	for i := 0; i < t.Len(); i++ {
		row := sheet.AddRow()
		for j, value := range t.Row(i) {
			cell := row.AddCell()
			if _, ok := numericColumns[columns[j]]; ok {
				if v, err := strconv.ParseFloat(value, 64); err == nil {
					cell.SetFloat(v)
					continue
				}
			}
			cell.SetString(value)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	if err := f.Save(tmpName); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "save workbook")
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "rename workbook to %s", path)
	}
	return nil
}
