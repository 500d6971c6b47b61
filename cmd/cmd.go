// Package cmd defines the command-line interface for personalens.
package cmd

import (
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(driftCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(clustersCmd)
	rootCmd.AddCommand(audioShiftCmd)
	rootCmd.AddCommand(videoShiftCmd)
	rootCmd.AddCommand(reasonsCmd)
	rootCmd.AddCommand(signalsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the vault subcommands to the parent vault command
	vaultCmd.AddCommand(vaultStatusCmd)
	vaultCmd.AddCommand(vaultShowCmd)
	vaultCmd.AddCommand(vaultClearCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("embedder", string(schema.HashEmbedder), "Text embedder: hash or openai")
	rootCmd.PersistentFlags().String("embed-model", schema.DefaultEmbedModel, "Embedding model name for the openai embedder")
	rootCmd.PersistentFlags().Int("embed-dim", schema.DefaultEmbedDim, "Embedding dimensionality")
	rootCmd.PersistentFlags().String("embed-base-url", "", "Base URL of an OpenAI-compatible embedding endpoint")
	rootCmd.PersistentFlags().String("embed-api-key", "", "API key for the openai embedder (prefer PERSONALENS_EMBED_API_KEY)")
	rootCmd.PersistentFlags().String("embed-cache", "no", "Cache text embeddings on disk (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("embed-cache-dir", "", "Directory of the embedding cache (default ~/.personalens_embed_cache)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("vault-backend", string(schema.SQLiteBackend), "Report vault backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("vault-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from vault-db-connect)")
	rootCmd.PersistentFlags().Float64("baseline-sec", schema.DefaultBaselineSec, "Baseline length in seconds for audio and video shifts")
	rootCmd.PersistentFlags().Float64("threshold", schema.DefaultSpikeThreshold, "Spike threshold on the z-score for audio and video shifts")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Input flags are read from each command directly since they share names
	for _, c := range []*cobra.Command{driftCmd, timelineCmd, clustersCmd, audioShiftCmd, videoShiftCmd, reasonsCmd, signalsCmd} {
		c.Flags().StringP("input", "i", "", "Path to a YAML or JSON input file (- for stdin)")
	}
	driftCmd.Flags().String("text-a", "", "Reference text")
	driftCmd.Flags().String("text-b", "", "Text compared with the reference")
	audioShiftCmd.Flags().String("pcm", "", "Path to raw 16-bit little-endian PCM audio")
	audioShiftCmd.Flags().Int("sample-rate", schema.DefaultTargetSampleRate, "Sample rate of the PCM audio in Hz")
	audioShiftCmd.Flags().Int("channels", 1, "Channel count of the PCM audio")
	reasonsCmd.Flags().IntSlice("indices", nil, "Only explain these text indices")
	signalsCmd.Flags().String("text", "", "Text to analyze")

	// Bind all flags of timelineCmd to Viper
	timelineCmd.Flags().Int("window", schema.DefaultWindow, "Rolling window size")
	timelineCmd.Flags().Int("stride", schema.DefaultStride, "Step between rolling windows")
	if err := viper.BindPFlags(timelineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding timeline flags", err)
	}

	// Bind all flags of clustersCmd to Viper
	clustersCmd.Flags().Int("k", schema.DefaultClusterK, "Number of clusters")
	clustersCmd.Flags().Int64("seed", schema.DefaultClusterSeed, "Random seed for k-means++")
	clustersCmd.Flags().Int("max-iter", schema.DefaultClusterIter, "Maximum k-means iterations")
	if err := viper.BindPFlags(clustersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding clusters flags", err)
	}

	// Bind all flags of audioShiftCmd to Viper
	audioShiftCmd.Flags().Float64("alpha", schema.DefaultAlpha, "Prosody weight when fusing with embeddings (0..1)")
	audioShiftCmd.Flags().Bool("use-embeddings", false, "Fuse the prosody branch with segment embeddings")
	if err := viper.BindPFlags(audioShiftCmd.Flags()); err != nil {
		contract.LogFatal("Error binding audio-shift flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
