// Package report assembles what presenters receive at the end of a run.
package report

import (
	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/labeling"
	"TweetSentiment/internal/table"
)

// Presentation is the sentiment table plus everything derived from it at
// read time.
type Presentation struct {
	RunID        string
	Keyword      string
	Executed     []domain.Stage
	Skipped      []domain.Stage
	Warnings     []string
	Table        *table.Table
	Resolution   labeling.Resolution
	Distribution []labeling.Share
	TopTerms     []Term
}

// Options bound the derived sections.
type Options struct {
	TopTerms int
}

// Build derives the label distribution and term frequencies for t.
func Build(t *table.Table, res labeling.Resolution, opts Options) Presentation {
	p := Presentation{Table: t, Resolution: res}
	if res.Resolved() {
		p.Distribution = labeling.Distribution(res.Labels)
	}
	if t != nil {
		p.TopTerms = TopTerms(t, opts.TopTerms)
	}
	return p
}

// Labeled returns a copy of the table with the resolved labels appended
// as a label column. Unresolved presentations return the table unchanged.
func (p Presentation) Labeled() (*table.Table, error) {
	if p.Table == nil {
		return table.New(), nil
	}
	if !p.Resolution.Resolved() {
		return p.Table.Clone(), nil
	}

	values := make([][]string, len(p.Resolution.Labels))
	for i, l := range p.Resolution.Labels {
		values[i] = []string{string(l)}
	}
	return p.Table.WithColumns([]string{domain.ColumnLabel}, values)
}
