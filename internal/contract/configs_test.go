package contract

import (
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input matching the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Embedder:     string(schema.HashEmbedder),
		EmbedModel:   schema.DefaultEmbedModel,
		EmbedDim:     schema.DefaultEmbedDim,
		EmbedCache:   "no",
		Workers:      4,
		Precision:    DefaultPrecision,
		Output:       "text",
		Color:        "yes",
		VaultBackend: string(schema.SQLiteBackend),
		Window:       schema.DefaultWindow,
		Stride:       schema.DefaultStride,
		K:            schema.DefaultClusterK,
		Seed:         schema.DefaultClusterSeed,
		MaxIter:      schema.DefaultClusterIter,
		Alpha:        schema.DefaultAlpha,
		BaselineSec:  schema.DefaultBaselineSec,
		Threshold:    schema.DefaultSpikeThreshold,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", modify: func(*ConfigRawInput) {}},
		{name: "uppercase output", modify: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "invalid output", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", modify: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", modify: func(in *ConfigRawInput) {
			in.Output = "parquet"
			in.OutputFile = "out.parquet"
		}},
		{name: "invalid workers (zero)", modify: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid precision (zero)", modify: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: true},
		{name: "invalid precision (too high)", modify: func(in *ConfigRawInput) { in.Precision = 7 }, expectError: true},
		{name: "invalid color", modify: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid embedder", modify: func(in *ConfigRawInput) { in.Embedder = "word2vec" }, expectError: true},
		{name: "empty model", modify: func(in *ConfigRawInput) { in.EmbedModel = "  " }, expectError: true},
		{name: "invalid dim", modify: func(in *ConfigRawInput) { in.EmbedDim = 0 }, expectError: true},
		{name: "openai without key or url", modify: func(in *ConfigRawInput) { in.Embedder = "openai" }, expectError: true},
		{name: "openai with key", modify: func(in *ConfigRawInput) {
			in.Embedder = "openai"
			in.EmbedAPIKey = "sk-test"
		}},
		{name: "openai with local url", modify: func(in *ConfigRawInput) {
			in.Embedder = "openai"
			in.EmbedBaseURL = "http://localhost:11434/v1"
		}},
		{name: "invalid embed cache", modify: func(in *ConfigRawInput) { in.EmbedCache = "sometimes" }, expectError: true},
		{name: "window too small", modify: func(in *ConfigRawInput) { in.Window = 1 }, expectError: true},
		{name: "stride zero", modify: func(in *ConfigRawInput) { in.Stride = 0 }, expectError: true},
		{name: "k zero", modify: func(in *ConfigRawInput) { in.K = 0 }, expectError: true},
		{name: "max-iter zero", modify: func(in *ConfigRawInput) { in.MaxIter = 0 }, expectError: true},
		{name: "alpha above one", modify: func(in *ConfigRawInput) { in.Alpha = 1.5 }, expectError: true},
		{name: "alpha at bounds", modify: func(in *ConfigRawInput) { in.Alpha = 1 }},
		{name: "baseline-sec zero", modify: func(in *ConfigRawInput) { in.BaselineSec = 0 }, expectError: true},
		{name: "threshold negative", modify: func(in *ConfigRawInput) { in.Threshold = -1 }, expectError: true},
		{name: "invalid vault backend", modify: func(in *ConfigRawInput) { in.VaultBackend = "redis" }, expectError: true},
		{name: "invalid runs backend", modify: func(in *ConfigRawInput) { in.RunsBackend = "redis" }, expectError: true},
		{name: "mysql without connect", modify: func(in *ConfigRawInput) { in.VaultBackend = "mysql" }, expectError: true},
		{name: "mysql with connect", modify: func(in *ConfigRawInput) {
			in.VaultBackend = "mysql"
			in.VaultDBConnect = "user:pass@tcp(localhost:3306)/personalens"
		}},
		{name: "sqlite stores on distinct defaults", modify: func(in *ConfigRawInput) { in.RunsBackend = "sqlite" }},
		{name: "sqlite stores sharing a file", modify: func(in *ConfigRawInput) {
			in.RunsBackend = "sqlite"
			in.VaultDBConnect = "/tmp/shared.db"
			in.RunsDBConnect = "/tmp/shared.db"
		}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcessAndValidateTransfersFields(t *testing.T) {
	input := validInput()
	input.Output = "CSV"
	input.EmbedCache = "yes"
	input.Seed = 7
	input.UseEmbeddings = true
	input.Color = "no"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.Equal(t, schema.HashEmbedder, cfg.Embedder)
	assert.True(t, cfg.EmbedCache)
	assert.Equal(t, GetEmbedCacheDir(), cfg.EmbedCacheDir, "cache dir falls back to the home directory")
	assert.Equal(t, int64(7), cfg.Seed)
	assert.True(t, cfg.UseEmbeddings)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.VaultBackend)
	assert.Empty(t, cfg.RunsBackend)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite ignores connect", schema.SQLiteBackend, "", false},
		{"none ignores connect", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(127.0.0.1:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@127.0.0.1/db", true},
		{"mysql missing db", schema.MySQLBackend, "root:pw@tcp(127.0.0.1:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=db", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=db", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{K: 3, Params: map[string]any{"k": 3}}
	clone := cfg.Clone()
	clone.K = 5
	clone.Params["k"] = 5

	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, 3, cfg.Params["k"])
}

func TestRunParams(t *testing.T) {
	cfg := &Config{
		Embedder:    schema.OpenAIEmbedder,
		EmbedModel:  "m",
		EmbedDim:    8,
		EmbedAPIKey: "secret",
		Workers:     2,
		Params:      map[string]any{"window": 3},
	}
	params := cfg.RunParams()
	assert.Equal(t, "openai", params["embedder"])
	assert.Equal(t, 3, params["window"])
	for _, v := range params {
		assert.NotEqual(t, "secret", v)
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(&profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}
