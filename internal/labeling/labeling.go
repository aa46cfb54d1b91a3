// Package labeling derives one categorical label per row from whichever
// label-relevant columns a table carries.
package labeling

import (
	"math"

	"github.com/rotisserie/eris"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/table"
)

// StrategyKind tags the rule used to label a table.
type StrategyKind string

const (
	StrategyExplicit  StrategyKind = "explicit"
	StrategyAlternate StrategyKind = "alternate"
	StrategyCompound  StrategyKind = "compound"
	StrategyPolarity  StrategyKind = "polarity"
	StrategyCleanText StrategyKind = "clean_text"
	StrategyRawText   StrategyKind = "raw_text"
	StrategyNone      StrategyKind = "none"
)

// Strategy is one named fallback rule together with the columns that
// satisfy it, in preference order.
type Strategy struct {
	Kind    StrategyKind
	Columns []string
}

// Strategies is the fixed priority chain. The first strategy with any of
// its columns present in the schema wins.
var Strategies = []Strategy{
	{Kind: StrategyExplicit, Columns: []string{"sentiment"}},
	{Kind: StrategyAlternate, Columns: []string{"vader_sentiment", "textblob_sentiment", domain.ColumnLabel}},
	{Kind: StrategyCompound, Columns: []string{domain.ColumnCompound, "vader_compound"}},
	{Kind: StrategyPolarity, Columns: []string{domain.ColumnPolarity, "textblob_polarity"}},
	{Kind: StrategyCleanText, Columns: []string{domain.ColumnCleanText}},
	{Kind: StrategyRawText, Columns: []string{domain.ColumnRawText, "text"}},
}

// Selection is the strategy chosen for a schema and the column it reads.
type Selection struct {
	Kind   StrategyKind
	Column string
}

// Select picks a strategy from column names alone.
func Select(columns []string) Selection {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, s := range Strategies {
		for _, c := range s.Columns {
			if _, ok := present[c]; ok {
				return Selection{Kind: s.Kind, Column: c}
			}
		}
	}
	return Selection{Kind: StrategyNone}
}

// Resolution is the outcome of labeling a table. Labels is aligned with the
// table rows, or empty when no strategy applied.
type Resolution struct {
	Strategy StrategyKind
	Column   string
	Labels   []domain.Label
}

// Resolved reports whether any strategy applied.
func (r Resolution) Resolved() bool {
	return r.Strategy != StrategyNone && r.Strategy != ""
}

// ErrScorerRequired marks a text-only table given to a resolver without a scorer.
var ErrScorerRequired = eris.New("scorer required to rescore text")

// Scorer rescoring text for the text-based strategies.
type Scorer interface {
	Score(text string) domain.ScoreBundle
}

// Resolver applies the strategy chain. A resolver built without a scorer
// handles score and label columns only; a table that needs rescoring then
// fails with ErrScorerRequired instead of resolving to nothing.
type Resolver struct {
	scorer Scorer
}

// NewResolver wires the scorer used by the text-based strategies.
func NewResolver(scorer Scorer) *Resolver {
	return &Resolver{scorer: scorer}
}

// Resolve labels every row of t with one strategy chosen from its schema.
func (r *Resolver) Resolve(t *table.Table) (Resolution, error) {
	if t == nil {
		return Resolution{Strategy: StrategyNone}, nil
	}

	sel := Select(t.Columns())
	if r.scorer == nil && (sel.Kind == StrategyCleanText || sel.Kind == StrategyRawText) {
		return Resolution{}, eris.Wrapf(ErrScorerRequired, "resolve labels with %s strategy", sel.Kind)
	}
	if sel.Kind == StrategyNone {
		return Resolution{Strategy: StrategyNone}, nil
	}

	var (
		labels []domain.Label
		err    error
	)
	switch sel.Kind {
	case StrategyExplicit, StrategyAlternate:
		labels, err = verbatim(t, sel.Column)
	case StrategyCompound:
		labels, err = numeric(t, sel.Column, domain.LabelFromCompound)
	case StrategyPolarity:
		labels, err = numeric(t, sel.Column, domain.LabelFromPolarity)
	case StrategyCleanText, StrategyRawText:
		labels, err = r.rescore(t, sel.Column)
	}
	if err != nil {
		return Resolution{}, eris.Wrapf(err, "resolve labels with %s strategy", sel.Kind)
	}

	return Resolution{Strategy: sel.Kind, Column: sel.Column, Labels: labels}, nil
}

func verbatim(t *table.Table, column string) ([]domain.Label, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	labels := make([]domain.Label, len(values))
	for i, v := range values {
		labels[i] = domain.Label(v)
	}
	return labels, nil
}

func numeric(t *table.Table, column string, classify func(float64) domain.Label) ([]domain.Label, error) {
	labels := make([]domain.Label, t.Len())
	for i := range labels {
		v, err := t.Float(i, column)
		if err != nil {
			return nil, eris.Wrap(domain.ErrMalformedInput, err.Error())
		}
		if math.IsNaN(v) {
			labels[i] = domain.LabelNeutral
			continue
		}
		labels[i] = classify(v)
	}
	return labels, nil
}

func (r *Resolver) rescore(t *table.Table, column string) ([]domain.Label, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	labels := make([]domain.Label, len(values))
	for i, text := range values {
		labels[i] = domain.LabelFromCompound(r.scorer.Score(text).Compound)
	}
	return labels, nil
}
