// Package lexical counts buzzword, hedge, absolute and metric signals in raw text.
package lexical

import (
	"regexp"
	"strings"
)

// Buzzwords are vague promotional terms.
var Buzzwords = []string{
	"synergy", "leverage", "scalable", "disrupt", "disruption", "ai", "ml", "deep learning", "blockchain",
	"growth hacking", "10x", "impact", "visionary", "thought leader", "innovative", "cutting-edge",
	"end-to-end", "stakeholder", "alignment", "strategic", "value-add", "paradigm", "robust", "seamless",
	"world-class", "best-in-class", "genai", "llm", "agentic", "transformative",
}

// Hedges soften a claim.
var Hedges = []string{
	"maybe", "probably", "possibly", "somewhat", "kind of", "sort of", "i think", "i guess", "perhaps",
}

// Absolutes overstate a claim.
var Absolutes = []string{
	"always", "never", "guaranteed", "everyone", "no one", "undeniable", "proven", "certainly", "definitely",
}

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "when", "while", "for", "to", "of", "in", "on", "at", "by", "from",
	"is", "are", "was", "were", "be", "been", "being", "as", "with", "without", "into", "about", "over", "under", "between",
	"this", "that", "these", "those", "it", "its", "they", "them", "their", "you", "your", "we", "our", "i", "me", "my",
	"can", "could", "should", "would", "may", "might", "will", "just", "only", "also", "very", "more", "most", "less", "few",
	"than", "too", "not", "no", "yes", "do", "does", "did", "done", "have", "has", "had",
)

var (
	// wordRe keeps hyphen and plus joined words intact, e.g. "end-to-end".
	wordRe = regexp.MustCompile(`[a-z0-9]+(?:[-+][a-z0-9]+)*`)

	// sentenceRe splits sentences on terminal punctuation.
	sentenceRe = regexp.MustCompile(`[.!?]+`)

	// metricRe matches numbers with an attached currency or percent sign as one hit,
	// quarter codes, and bare currency or percent signs.
	metricRe = regexp.MustCompile(`(?i)(?:[$₹]\s?)?\b\d+(?:\.\d+)?\b%?|\bq[1-4]\b|[%$₹]`)

	buzzwordRes = compilePhrases(Buzzwords)
	hedgeRes    = compilePhrases(Hedges)
	absoluteRes = compilePhrases(Absolutes)
)

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}

// countPhrases counts whole-word matches of every phrase in lowercased text.
func countPhrases(lower string, res []*regexp.Regexp) int {
	total := 0
	for _, re := range res {
		total += len(re.FindAllStringIndex(lower, -1))
	}
	return total
}

// Words tokenizes text into lowercase words.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
