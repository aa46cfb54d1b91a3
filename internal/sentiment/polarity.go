package sentiment

import (
	"bytes"
	_ "embed"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

//go:embed data/polarity_lexicon.tsv
var polarityLexiconTSV []byte

// negationScale is applied to an assessment preceded by a negation.
const negationScale = -0.5

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "cannot": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {}, "arent": {},
	"werent": {}, "cant": {}, "couldnt": {}, "wont": {}, "wouldnt": {}, "shouldnt": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "isn't": {}, "wasn't": {}, "aren't": {},
	"weren't": {}, "can't": {}, "couldn't": {}, "won't": {}, "wouldn't": {}, "shouldn't": {},
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.3,
	"too":        1.2,
	"extremely":  1.5,
	"incredibly": 1.4,
	"super":      1.4,
	"totally":    1.3,
	"absolutely": 1.4,
	"quite":      1.1,
	"pretty":     1.1,
	"somewhat":   0.8,
	"slightly":   0.6,
	"barely":     0.5,
	"kinda":      0.7,
}

// PolarityEstimator is a pattern-style polarity measure: the mean of the
// polarities of known words in the text, each scaled by preceding
// intensifiers and flipped at half strength by a preceding negation.
type PolarityEstimator struct {
	lexicon map[string]float64
}

// NewPolarityEstimator loads the bundled word polarities.
func NewPolarityEstimator() (*PolarityEstimator, error) {
	lexicon, err := ParseLexicon(bytes.NewReader(polarityLexiconTSV))
	if err != nil {
		return nil, eris.Wrap(err, "load polarity lexicon")
	}
	return &PolarityEstimator{lexicon: lexicon}, nil
}

// Polarity returns a value in [-1, 1]; 0 when no known word is present.
func (p *PolarityEstimator) Polarity(text string) float64 {
	var (
		assessments []float64
		multiplier  = 1.0
		negated     bool
	)

	for _, word := range tokenize(text) {
		if _, ok := negations[word]; ok {
			negated = true
			continue
		}
		if m, ok := intensifiers[word]; ok {
			multiplier *= m
			continue
		}

		value, ok := p.lexicon[word]
		if !ok {
			multiplier = 1.0
			continue
		}

		value = clamp(value * multiplier)
		if negated {
			value *= negationScale
		}
		assessments = append(assessments, value)
		multiplier = 1.0
		negated = false
	}

	if len(assessments) == 0 {
		return 0
	}
	return scalar.Round(clamp(floats.Sum(assessments)/float64(len(assessments))), 4)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
