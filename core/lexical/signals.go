package lexical

import (
	"math"
	"strings"

	"github.com/personalens/personalens/schema"
)

// Scoring weights of the signal score.
const (
	baseScore        = 60
	metricWeight     = 2
	metricCap        = 20
	buzzwordWeight   = 2
	buzzwordCap      = 30
	absoluteWeight   = 2
	absoluteCap      = 15
	hedgeWeight      = 1
	hedgeCap         = 10
	minScore         = 0
	maxScore         = 100
	wordsPerHundred  = 100
	buzzwordDecimals = 10
)

// Extract counts the lexical signals of text and derives its 0..100 score.
// Higher scores mean more measurable specifics and less inflated language.
func Extract(text string) schema.LexicalCounts {
	lower := strings.ToLower(text)
	words := Words(text)

	sentences := 0
	for _, s := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	c := schema.LexicalCounts{
		WordCount:     len(words),
		SentenceCount: max(1, sentences),
		MetricHits:    len(metricRe.FindAllStringIndex(text, -1)),
		BuzzwordHits:  countPhrases(lower, buzzwordRes),
		HedgeHits:     countPhrases(lower, hedgeRes),
		AbsoluteHits:  countPhrases(lower, absoluteRes),
	}

	per100 := 0.0
	if c.WordCount > 0 {
		per100 = float64(c.BuzzwordHits) / float64(c.WordCount) * wordsPerHundred
	}
	c.BuzzwordPer100Words = math.Round(per100*buzzwordDecimals) / buzzwordDecimals

	score := float64(baseScore)
	score += math.Min(metricCap, float64(c.MetricHits*metricWeight))
	score -= math.Min(buzzwordCap, per100*buzzwordWeight)
	score -= math.Min(absoluteCap, float64(c.AbsoluteHits*absoluteWeight))
	score -= math.Min(hedgeCap, float64(c.HedgeHits*hedgeWeight))
	c.Score = int(math.Max(minScore, math.Min(maxScore, math.RoundToEven(score))))
	return c
}
