// Package normalize cleans raw post text before scoring.
package normalize

import (
	"regexp"
	"strings"
)

var (
	urlExpr     = regexp.MustCompile(`(?i)http\S+`)
	mentionExpr = regexp.MustCompile(`@\w+`)
	specialExpr = regexp.MustCompile(`[^A-Za-z0-9\s]`)
)

// Text removes links, @-mentions, the hashtag marker and every character
// that is not an ASCII letter, digit or whitespace, then lowercases the
// result and trims it. Internal whitespace runs collapse to one space.
//
// Text is idempotent: the cleaning pass repeats until the output stops
// changing, since stripping punctuation can join fragments into a new
// link-like token (for example "ht#tp://x" becomes "httpx").
func Text(raw string) string {
	out := clean(raw)
	for {
		next := clean(out)
		if next == out {
			return out
		}
		out = next
	}
}

func clean(s string) string {
	s = urlExpr.ReplaceAllString(s, "")
	s = mentionExpr.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "#", "")
	s = specialExpr.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// All normalizes every value in order.
func All(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Text(s)
	}
	return out
}
