package lexical

import (
	"cmp"
	"slices"
	"strings"
)

const minKeywordLen = 3

// Keywords returns the n most frequent non-stopword terms of the texts.
// Ties keep first-seen order.
func Keywords(texts []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	freq := map[string]int{}
	var order []string
	for _, t := range texts {
		for _, w := range Words(t) {
			if len(w) < minKeywordLen {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			if _, seen := freq[w]; !seen {
				order = append(order, w)
			}
			freq[w]++
		}
	}
	// SortStableFunc keeps first-seen order among equal counts.
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(freq[b], freq[a])
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// Label joins the first n keywords, or returns fallback when there are none.
func Label(keywords []string, n int, fallback string) string {
	if len(keywords) == 0 {
		return fallback
	}
	return strings.Join(keywords[:min(n, len(keywords))], " / ")
}
