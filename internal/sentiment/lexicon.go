package sentiment

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats/scalar"
)

// LexiconScorer computes the VADER compound score and its neg/neu/pos split.
type LexiconScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewLexiconScorer builds an analyzer over the bundled VADER lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Extend merges word valences into the lexicon, replacing existing entries.
func (l *LexiconScorer) Extend(entries map[string]float64) {
	for word, valence := range entries {
		l.analyzer.Lexicon[strings.ToLower(word)] = valence
	}
}

// Scores returns compound, neg, neu and pos, rounded the way the reference
// VADER implementation rounds them.
func (l *LexiconScorer) Scores(text string) (compound, neg, neu, pos float64) {
	s := l.analyzer.PolarityScores(text)
	return scalar.Round(s.Compound, 4),
		scalar.Round(s.Negative, 3),
		scalar.Round(s.Neutral, 3),
		scalar.Round(s.Positive, 3)
}

// LoadLexiconFile reads a VADER-format lexicon file: one entry per line,
// word and mean valence separated by a tab, extra fields ignored.
func LoadLexiconFile(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open lexicon %s", path)
	}
	defer f.Close()

	entries, err := ParseLexicon(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parse lexicon %s", path)
	}
	return entries, nil
}

// ParseLexicon parses tab-separated word/valence lines. Blank lines and
// lines starting with '#' are skipped.
func ParseLexicon(r io.Reader) (map[string]float64, error) {
	entries := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, eris.Errorf("line %d: expected word<TAB>valence", line)
		}
		valence, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "line %d", line)
		}
		entries[strings.TrimSpace(fields[0])] = valence
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "scan lexicon")
	}
	return entries, nil
}
