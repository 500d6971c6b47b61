package schema

// TimelineItem is one dated text entry of a timeline.
type TimelineItem struct {
	Date string `json:"date" yaml:"date"`
	Text string `json:"text" yaml:"text"`
}

// FrameEmbedding is a per-frame video embedding at a timestamp.
type FrameEmbedding struct {
	TimeMs    int           `json:"timeMs" yaml:"timeMs"`
	Embedding FeatureVector `json:"embedding" yaml:"embedding"`
}

// DriftResult is the response of a two-text drift analysis.
type DriftResult struct {
	Similarity     float64 `json:"similarity"`
	DriftScore     float64 `json:"driftScore"`
	EmbeddingModel string  `json:"embeddingModel"`
}

// DriftSetResult is the response of a set drift analysis against the set centroid.
type DriftSetResult struct {
	Count                int       `json:"count"`
	EmbeddingDim         int       `json:"embeddingDim"`
	SimilarityToCentroid []float64 `json:"similarityToCentroid"`
	MeanSimilarity       float64   `json:"meanSimilarity"`
	MinSimilarity        float64   `json:"minSimilarity"`
	MaxSimilarity        float64   `json:"maxSimilarity"`
	StdSimilarity        float64   `json:"stdSimilarity"`
	DriftScore           float64   `json:"driftScore"`
	OutlierIndices       []int     `json:"outlierIndices"`
	EmbeddingModel       string    `json:"embeddingModel"`
}

// TimelineResult is the response of a timeline drift analysis.
type TimelineResult struct {
	Count          int            `json:"count"`
	Window         int            `json:"window"`
	Stride         int            `json:"stride"`
	Items          []TimelineItem `json:"items"`
	Pairwise       []DriftPair    `json:"pairwise"`
	Windows        []DriftWindow  `json:"windows"`
	Summary        RunSummary     `json:"summary"`
	EmbeddingModel string         `json:"embeddingModel"`
}

// ClusterAssignment maps an input index to its cluster.
type ClusterAssignment struct {
	Index     int `json:"index"`
	ClusterID int `json:"clusterId"`
}

// ClusterResult is the response of a clustering run.
type ClusterResult struct {
	Count          int                 `json:"count"`
	K              int                 `json:"k"`
	Seed           int64               `json:"seed"`
	Iterations     int                 `json:"iterations"`
	Clusters       []Cluster           `json:"clusters"`
	Items          []ClusterAssignment `json:"items"`
	EmbeddingModel string              `json:"embeddingModel"`
}

// ScoredSegment is a segment together with its anomaly score.
type ScoredSegment struct {
	Index int `json:"index"`
	Segment
	AnomalyResult
	ProsodyAnomaly   *float64 `json:"prosodyAnomaly,omitempty"`
	EmbeddingAnomaly *float64 `json:"embeddingAnomaly,omitempty"`
}

// ShiftResult is the response of an audio or video shift analysis.
type ShiftResult struct {
	Modality      Modality        `json:"modality"`
	Segments      []ScoredSegment `json:"segments"`
	Summary       RunSummary      `json:"summary"`
	Baseline      BaselineInfo    `json:"baseline"`
	Threshold     float64         `json:"threshold"`
	Alpha         *float64        `json:"alpha,omitempty"`
	UseEmbeddings bool            `json:"useEmbeddings"`
}

// BaselineInfo describes the baseline used by a shift analysis without the centroid.
type BaselineInfo struct {
	Seconds     float64 `json:"seconds"`
	SourceCount int     `json:"sourceCount"`
	Dispersion  float64 `json:"dispersion"`
}

// TextReason is the reasons breakdown for one text.
type TextReason struct {
	Index              int           `json:"index"`
	ReasonTags         []string      `json:"reasonTags"`
	Keywords           []string      `json:"keywords"`
	Signals            LexicalCounts `json:"signals"`
	SemanticSimilarity *float64      `json:"semanticSimilarity,omitempty"`
	SemanticOutlier    bool          `json:"semanticOutlier"`
}

// ReasonsResult is the response of a text reasons analysis.
type ReasonsResult struct {
	Count          int          `json:"count"`
	Items          []TextReason `json:"items"`
	EmbeddingModel string       `json:"embeddingModel,omitempty"`
}

// AnalysisInput is the content of an input file. Each operation reads only the fields it needs.
type AnalysisInput struct {
	TextA    string           `json:"textA,omitempty" yaml:"textA"`
	TextB    string           `json:"textB,omitempty" yaml:"textB"`
	Texts    []string         `json:"texts,omitempty" yaml:"texts"`
	Indices  []int            `json:"indices,omitempty" yaml:"indices"`
	Items    []TimelineItem   `json:"items,omitempty" yaml:"items"`
	Segments []Segment        `json:"segments,omitempty" yaml:"segments"`
	Frames   []FrameEmbedding `json:"frames,omitempty" yaml:"frames"`
}
