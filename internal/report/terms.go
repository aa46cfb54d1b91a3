package report

import (
	"sort"
	"strings"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/table"
)

// Term is a word and the number of times it occurs across the text column.
type Term struct {
	Word  string
	Count int
}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at
		be because been before being below between both but by can could did do does doing down
		during each few for from further had has have having he her here hers herself him himself
		his how i if in into is it its itself just me more most my myself no nor not of off on once
		only or other our ours ourselves out over own rt same she should so some such than that the
		their theirs them themselves then there these they this those through to too under until up
		very was we were what when where which while who whom why will with would you your yours
		yourself yourselves amp`) {
		stopwords[w] = struct{}{}
	}
}

// TextColumn picks the column feeding term counts: clean text when present,
// else text, else raw text. Empty when none exists.
func TextColumn(t *table.Table) string {
	for _, c := range []string{domain.ColumnCleanText, "text", domain.ColumnRawText} {
		if t.Has(c) {
			return c
		}
	}
	return ""
}

// TopTerms returns at most n most frequent non-stopword terms, ties broken
// alphabetically. n <= 0 returns nil.
func TopTerms(t *table.Table, n int) []Term {
	column := TextColumn(t)
	if n <= 0 || column == "" {
		return nil
	}

	values, err := t.Column(column)
	if err != nil {
		return nil
	}

	counts := make(map[string]int)
	for _, v := range values {
		for _, w := range strings.Fields(strings.ToLower(v)) {
			if _, stop := stopwords[w]; stop || len(w) < 2 {
				continue
			}
			counts[w]++
		}
	}

	terms := make([]Term, 0, len(counts))
	for w, c := range counts {
		terms = append(terms, Term{Word: w, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Word < terms[j].Word
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
