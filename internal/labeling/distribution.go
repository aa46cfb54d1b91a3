package labeling

import (
	"sort"

	"TweetSentiment/internal/domain"
)

// Share is one bucket of a label distribution.
type Share struct {
	Label   domain.Label
	Count   int
	Percent float64
}

// Counts tallies labels.
func Counts(labels []domain.Label) map[domain.Label]int {
	out := make(map[domain.Label]int)
	for _, l := range labels {
		out[l]++
	}
	return out
}

var canonicalOrder = map[domain.Label]int{
	domain.LabelPositive: 0,
	domain.LabelNeutral:  1,
	domain.LabelNegative: 2,
}

// Distribution returns per-label shares. The three canonical labels come
// first in Positive, Neutral, Negative order; verbatim values outside them
// follow alphabetically.
func Distribution(labels []domain.Label) []Share {
	if len(labels) == 0 {
		return nil
	}

	counts := Counts(labels)
	shares := make([]Share, 0, len(counts))
	for l, n := range counts {
		shares = append(shares, Share{
			Label:   l,
			Count:   n,
			Percent: 100 * float64(n) / float64(len(labels)),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		oi, iok := canonicalOrder[shares[i].Label]
		oj, jok := canonicalOrder[shares[j].Label]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return shares[i].Label < shares[j].Label
		}
	})
	return shares
}
