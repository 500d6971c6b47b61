package lexical

import "github.com/personalens/personalens/schema"

// Reason tags attached to a text.
const (
	TagVeryShort       = "Very short (noisy signal)"
	TagLowSpecificity  = "Low specificity (few/no metrics)"
	TagHasSpecifics    = "Has measurable specifics"
	TagBuzzwordDensity = "High buzzword density"
	TagBuzzwordHeavy   = "Buzzword-heavy"
	TagOverconfident   = "Overconfident language"
	TagHedging         = "Hedging language"
	TagSemanticOutlier = "Semantic outlier vs timeline"
)

// Thresholds for the reason tags.
const (
	shortTextWords     = 20
	specificMetricHits = 3
	buzzDensityPer100  = 2.0
	buzzHeavyHits      = 3
	overconfidentHits  = 2
	hedgingHits        = 2
)

// ReasonTags explains a text's signals with at most limit short tags.
func ReasonTags(s schema.LexicalCounts, outlier bool, limit int) []string {
	tags := []string{}
	if s.WordCount < shortTextWords {
		tags = append(tags, TagVeryShort)
	}
	if s.MetricHits == 0 {
		tags = append(tags, TagLowSpecificity)
	}
	if s.MetricHits >= specificMetricHits {
		tags = append(tags, TagHasSpecifics)
	}
	if s.BuzzwordPer100Words >= buzzDensityPer100 {
		tags = append(tags, TagBuzzwordDensity)
	} else if s.BuzzwordHits >= buzzHeavyHits {
		tags = append(tags, TagBuzzwordHeavy)
	}
	if s.AbsoluteHits >= overconfidentHits {
		tags = append(tags, TagOverconfident)
	}
	if s.HedgeHits >= hedgingHits {
		tags = append(tags, TagHedging)
	}
	if outlier {
		tags = append(tags, TagSemanticOutlier)
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
