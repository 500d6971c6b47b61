package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the vault and run stores.
	DatabaseBackend string

	// Driver names the modality that dominates a fused anomaly.
	Driver string

	// EmbedderKind selects the text embedding provider.
	EmbedderKind string

	// Section names a report vault slot.
	Section string

	// Modality is the input kind of a tracked run.
	Modality string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All drivers reported by run summaries.
const (
	DriverProsody   Driver = "prosody"
	DriverEmbedding Driver = "embedding"
	DriverText      Driver = "text"
)

// All text embedders supported.
const (
	HashEmbedder   EmbedderKind = "hash" // default, offline
	OpenAIEmbedder EmbedderKind = "openai"
)

// Report vault sections, one per operation.
const (
	SectionDrift      Section = "drift"
	SectionDriftSet   Section = "drift-set"
	SectionTimeline   Section = "timeline"
	SectionClusters   Section = "clusters"
	SectionAudioShift Section = "audio-shift"
	SectionVideoShift Section = "video-shift"
	SectionReasons    Section = "reasons"
	SectionSignals    Section = "signals"
)

// Modalities recorded by the run store.
const (
	TextModality  Modality = "text"
	AudioModality Modality = "audio"
	VideoModality Modality = "video"
)

// Calibration constants. These are tunable defaults, not derived values.
const (
	// ConsistencyZCeiling maps a mean z-score of this value onto a consistency score of 0.
	ConsistencyZCeiling = 3.0

	// DefaultSpikeThreshold is the z-score at or above which a segment is a spike.
	DefaultSpikeThreshold = 1.25

	// OutlierStdMultiplier is how many population std below the window mean similarity an outlier sits.
	OutlierStdMultiplier = 1.5

	// MinStatWindow is the smallest window size that uses the std rule for outliers.
	MinStatWindow = 3

	// OutlierSimilarityFloor is the absolute similarity cutoff for windows smaller than MinStatWindow.
	OutlierSimilarityFloor = 0.5

	// BaselineEpsilon replaces a zero baseline dispersion.
	BaselineEpsilon = 1e-6

	// MinBaselineCount is the minimum number of segments a baseline needs.
	MinBaselineCount = 2

	// FeatureEpsilon guards per-feature standardization of prosody values.
	FeatureEpsilon = 1e-8
)

// Default analysis parameters.
const (
	DefaultWindow        = 3
	DefaultStride        = 1
	DefaultClusterK      = 3
	DefaultClusterSeed   = 42
	DefaultClusterIter   = 25
	DefaultAlpha         = 0.5
	DefaultBaselineSec   = 20.0
	DefaultTimelineBase  = 2
	DefaultKeywordCount  = 6
	DefaultLabelKeywords = 3
	DefaultMaxReasonTags = 5
	DefaultEmbedDim      = 256
	DefaultEmbedModel    = "text-embedding-3-small"
)

// Segmentation defaults shared by the audio and video pipelines.
const (
	DefaultSegmentWindowMs  = 4000
	DefaultSegmentHopMs     = 2000
	DefaultTargetSampleRate = 16000
	MaxAudioSeconds         = 180
)

// TimelineDateLayout is the accepted timeline date format.
const TimelineDateLayout = "2006-01-02"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidEmbedders lists all valid text embedders.
var ValidEmbedders = map[EmbedderKind]struct{}{
	HashEmbedder:   {},
	OpenAIEmbedder: {},
}

// AllSections lists every report vault section in display order.
var AllSections = []Section{
	SectionDrift,
	SectionDriftSet,
	SectionTimeline,
	SectionClusters,
	SectionAudioShift,
	SectionVideoShift,
	SectionReasons,
	SectionSignals,
}
