package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/personalens/personalens/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	MaxPrecision     = 6
	MaxEmbedDim      = 8192
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Embedder      schema.EmbedderKind
	EmbedModel    string
	EmbedDim      int
	EmbedBaseURL  string
	EmbedAPIKey   string // Please use env var as this is plaintext
	EmbedCache    bool
	EmbedCacheDir string

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	VaultBackend   schema.DatabaseBackend
	VaultDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	// Timeline parameters
	Window int
	Stride int

	// Clustering parameters
	K       int
	Seed    int64
	MaxIter int

	// Shift parameters
	Alpha         float64
	UseEmbeddings bool
	BaselineSec   float64
	Threshold     float64

	// Params holds free-form overrides recorded with tracked runs.
	Params map[string]any
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Embedder       string `mapstructure:"embedder"`
	EmbedModel     string `mapstructure:"embed-model"`
	EmbedDim       int    `mapstructure:"embed-dim"`
	EmbedBaseURL   string `mapstructure:"embed-base-url"`
	EmbedAPIKey    string `mapstructure:"embed-api-key"`
	EmbedCache     string `mapstructure:"embed-cache"`
	EmbedCacheDir  string `mapstructure:"embed-cache-dir"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	VaultBackend   string `mapstructure:"vault-backend"`
	VaultDBConnect string `mapstructure:"vault-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Fields from timelineCmd.Flags() ---
	Window int `mapstructure:"window"`
	Stride int `mapstructure:"stride"`

	// --- Fields from clustersCmd.Flags() ---
	K       int   `mapstructure:"k"`
	Seed    int64 `mapstructure:"seed"`
	MaxIter int   `mapstructure:"max-iter"`

	// --- Fields from audioShiftCmd.Flags() and videoShiftCmd.Flags() ---
	Alpha         float64 `mapstructure:"alpha"`
	UseEmbeddings bool    `mapstructure:"use-embeddings"`
	BaselineSec   float64 `mapstructure:"baseline-sec"`
	Threshold     float64 `mapstructure:"threshold"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Params != nil {
		clone.Params = make(map[string]any, len(c.Params))
		maps.Copy(clone.Params, c.Params)
	}
	return &clone
}

// RunParams returns the parameters recorded with a tracked run.
// The API key is never included.
func (c *Config) RunParams() map[string]any {
	params := map[string]any{
		"embedder":   string(c.Embedder),
		"embedModel": c.EmbedModel,
		"embedDim":   c.EmbedDim,
		"workers":    c.Workers,
	}
	maps.Copy(params, c.Params)
	return params
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEmbedder(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisParams(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and worker fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processEmbedder validates the text embedder settings.
func processEmbedder(cfg *Config, input *ConfigRawInput) error {
	cfg.Embedder = schema.EmbedderKind(strings.ToLower(input.Embedder))
	if _, ok := schema.ValidEmbedders[cfg.Embedder]; !ok {
		return fmt.Errorf("invalid embedder '%s'. must be hash, openai", input.Embedder)
	}

	cfg.EmbedModel = strings.TrimSpace(input.EmbedModel)
	if cfg.EmbedModel == "" {
		return fmt.Errorf("embed-model cannot be empty")
	}

	if input.EmbedDim <= 0 || input.EmbedDim > MaxEmbedDim {
		return fmt.Errorf("embed-dim must be greater than 0 and cannot exceed %d (received %d)", MaxEmbedDim, input.EmbedDim)
	}
	cfg.EmbedDim = input.EmbedDim

	cfg.EmbedBaseURL = strings.TrimSpace(input.EmbedBaseURL)
	cfg.EmbedAPIKey = input.EmbedAPIKey
	if cfg.Embedder == schema.OpenAIEmbedder && cfg.EmbedAPIKey == "" && cfg.EmbedBaseURL == "" {
		return fmt.Errorf("embed-api-key is required when using the openai embedder without embed-base-url")
	}

	cache, err := ParseBoolString(input.EmbedCache)
	if err != nil {
		return fmt.Errorf("invalid --embed-cache value: %w", err)
	}
	cfg.EmbedCache = cache
	cfg.EmbedCacheDir = input.EmbedCacheDir
	if cfg.EmbedCache && cfg.EmbedCacheDir == "" {
		cfg.EmbedCacheDir = GetEmbedCacheDir()
	}

	return nil
}

// validateBackendConfigs validates vault and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Vault Backend Validation ---
	cfg.VaultBackend = schema.DatabaseBackend(strings.ToLower(input.VaultBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.VaultBackend]; !ok {
		return fmt.Errorf("invalid vault backend '%s'. must be sqlite, mysql, postgresql, none", input.VaultBackend)
	}
	cfg.VaultDBConnect = input.VaultDBConnect
	if err := ValidateDatabaseConnectionString(cfg.VaultBackend, cfg.VaultDBConnect); err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs: %w", err)
	}

	// Vault and runs must not share one SQLite file
	if cfg.VaultBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		vaultDBPath := cfg.VaultDBConnect
		if vaultDBPath == "" {
			vaultDBPath = GetVaultDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if vaultDBPath == runsDBPath {
			return fmt.Errorf("vault and run storage must use different SQLite database files. Both resolve to %q", vaultDBPath)
		}
	}

	return nil
}

// processAnalysisParams validates the per-operation parameters.
func processAnalysisParams(cfg *Config, input *ConfigRawInput) error {
	if input.Window < 2 {
		return fmt.Errorf("window must be at least 2 (received %d)", input.Window)
	}
	if input.Stride < 1 {
		return fmt.Errorf("stride must be at least 1 (received %d)", input.Stride)
	}
	cfg.Window = input.Window
	cfg.Stride = input.Stride

	if input.K < 1 {
		return fmt.Errorf("k must be at least 1 (received %d)", input.K)
	}
	if input.MaxIter < 1 {
		return fmt.Errorf("max-iter must be at least 1 (received %d)", input.MaxIter)
	}
	cfg.K = input.K
	cfg.Seed = input.Seed
	cfg.MaxIter = input.MaxIter

	if input.Alpha < 0 || input.Alpha > 1 {
		return fmt.Errorf("alpha must be between 0.0 and 1.0 (received %.2f)", input.Alpha)
	}
	if input.BaselineSec <= 0 {
		return fmt.Errorf("baseline-sec must be greater than 0 (received %.2f)", input.BaselineSec)
	}
	if input.Threshold <= 0 {
		return fmt.Errorf("threshold must be greater than 0 (received %.2f)", input.Threshold)
	}
	cfg.Alpha = input.Alpha
	cfg.UseEmbeddings = input.UseEmbeddings
	cfg.BaselineSec = input.BaselineSec
	cfg.Threshold = input.Threshold

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
