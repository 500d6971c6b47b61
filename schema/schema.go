// Package schema holds the shared types and constants of the consistency engine.
package schema

// FeatureVector is an embedding or feature set with a fixed dimensionality per run.
type FeatureVector []float64

// Clone returns an independent copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	if v == nil {
		return nil
	}
	out := make(FeatureVector, len(v))
	copy(out, v)
	return out
}

// ProsodyFeatures are the per-segment prosodic measurements.
type ProsodyFeatures struct {
	RMS        float64 `json:"rms" yaml:"rms"`
	ZCR        float64 `json:"zcr" yaml:"zcr"`
	PauseRatio float64 `json:"pauseRatio" yaml:"pauseRatio"`
	PitchHz    float64 `json:"pitchHz" yaml:"pitchHz"`
}

// Segment is one fixed-size time window of an audio or video run.
type Segment struct {
	StartMs    int                `json:"startMs" yaml:"startMs"`
	EndMs      int                `json:"endMs" yaml:"endMs"`
	Features   FeatureVector      `json:"features,omitempty" yaml:"features"`
	RawMetrics map[string]float64 `json:"rawMetrics,omitempty" yaml:"rawMetrics"`
	Embedding  FeatureVector      `json:"embedding,omitempty" yaml:"embedding"`
	Prosody    *ProsodyFeatures   `json:"prosody,omitempty" yaml:"prosody"`
}

// Baseline is the reference centroid and dispersion of a run.
type Baseline struct {
	Centroid    FeatureVector `json:"centroid"`
	Dispersion  float64       `json:"dispersion"`
	SourceCount int           `json:"sourceCount"`
}

// AnomalyResult is the score of a single segment against the baseline.
type AnomalyResult struct {
	RawAnomaly           float64 `json:"rawAnomaly"`
	ZScore               float64 `json:"zScore"`
	PercentileVsBaseline float64 `json:"percentileVsBaseline"`
	IsSpike              bool    `json:"isSpike"`
	IsBaseline           bool    `json:"isBaseline"`
}

// DriftPair is the similarity between two adjacent items.
type DriftPair struct {
	FromIndex  int     `json:"fromIndex"`
	ToIndex    int     `json:"toIndex"`
	Similarity float64 `json:"similarity"`
	DriftScore float64 `json:"driftScore"`
	FromDate   string  `json:"fromDate,omitempty"`
	ToDate     string  `json:"toDate,omitempty"`
}

// DriftWindow summarizes one rolling window; EndIndex is inclusive.
type DriftWindow struct {
	StartIndex     int     `json:"startIndex"`
	EndIndex       int     `json:"endIndex"`
	Count          int     `json:"count"`
	MeanSimilarity float64 `json:"meanSimilarity"`
	MinSimilarity  float64 `json:"minSimilarity"`
	MaxSimilarity  float64 `json:"maxSimilarity"`
	StdSimilarity  float64 `json:"stdSimilarity"`
	DriftScore     float64 `json:"driftScore"`
	OutlierIndices []int   `json:"outlierIndices"`
	StartDate      string  `json:"startDate,omitempty"`
	EndDate        string  `json:"endDate,omitempty"`
}

// Cluster is one group produced by a clustering run.
type Cluster struct {
	ClusterID           int           `json:"clusterId"`
	Size                int           `json:"size"`
	Label               string        `json:"label"`
	Centroid            FeatureVector `json:"centroid,omitempty"`
	MemberIndices       []int         `json:"memberIndices"`
	TopKeywords         []string      `json:"topKeywords"`
	RepresentativeIndex int           `json:"representativeIndex"`
	RepresentativeText  string        `json:"representativeText,omitempty"`
	AvgSimilarity       float64       `json:"avgSimilarity"`
}

// RunSummary aggregates all scored segments of one run.
type RunSummary struct {
	ConsistencyScore float64 `json:"consistencyScore"`
	TotalSegments    int     `json:"totalSegments"`
	SpikeCount       int     `json:"spikeCount"`
	SpikeRate        float64 `json:"spikeRate"`
	PeakAnomaly      float64 `json:"peakAnomaly"`
	MeanAnomaly      float64 `json:"meanAnomaly"`
	Driver           Driver  `json:"driver"`
	DriverShare      float64 `json:"driverShare"`
}

// LexicalCounts are the surface-level signals of one text.
type LexicalCounts struct {
	Score               int     `json:"score"`
	WordCount           int     `json:"wordCount"`
	SentenceCount       int     `json:"sentenceCount"`
	MetricHits          int     `json:"metricHits"`
	BuzzwordHits        int     `json:"buzzwordHits"`
	HedgeHits           int     `json:"hedgeHits"`
	AbsoluteHits        int     `json:"absoluteHits"`
	BuzzwordPer100Words float64 `json:"buzzwordPer100Words"`
}
