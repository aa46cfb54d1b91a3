// Package sentiment scores cleaned post text with two independent measures:
// a VADER lexicon score and a pattern-style polarity estimate.
package sentiment

import (
	"strings"

	"github.com/rotisserie/eris"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
)

// Options tune scorer construction.
type Options struct {
	// LexiconOverridePath points to an optional VADER-format file whose
	// entries are merged over the bundled lexicon.
	LexiconOverridePath string
}

// Scorer implements ports.Scorer. It is safe for sequential reuse and holds
// no state that changes between calls.
type Scorer struct {
	lexicon  *LexiconScorer
	polarity *PolarityEstimator
}

var _ ports.Scorer = (*Scorer)(nil)

// New builds a Scorer from the bundled lexicons plus any override file.
func New(opts Options) (*Scorer, error) {
	lexicon := NewLexiconScorer()
	if opts.LexiconOverridePath != "" {
		entries, err := LoadLexiconFile(opts.LexiconOverridePath)
		if err != nil {
			return nil, eris.Wrap(err, "load lexicon override")
		}
		lexicon.Extend(entries)
	}

	polarity, err := NewPolarityEstimator()
	if err != nil {
		return nil, err
	}

	return &Scorer{lexicon: lexicon, polarity: polarity}, nil
}

// Score returns the full bundle for text. Empty or whitespace-only input
// yields domain.NeutralBundle.
func (s *Scorer) Score(text string) domain.ScoreBundle {
	if strings.TrimSpace(text) == "" {
		return domain.NeutralBundle()
	}

	compound, neg, neu, pos := s.lexicon.Scores(text)
	return domain.ScoreBundle{
		Compound: compound,
		Neg:      neg,
		Neu:      neu,
		Pos:      pos,
		Polarity: s.polarity.Polarity(text),
	}
}
