package cmd

import (
	"fmt"
	"os"

	"github.com/personalens/personalens/core"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/spf13/cobra"
)

// readInput loads the --input file of cmd, or returns an empty input when none is given.
func readInput(cmd *cobra.Command) (*schema.AnalysisInput, error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "" {
		return &schema.AnalysisInput{}, nil
	}
	return contract.LoadAnalysisInput(path)
}

// runAnalysis loads the input of cmd, lets prepare adjust it, and runs exec.
func runAnalysis(cmd *cobra.Command, name string, exec core.ExecutorFunc, prepare func(*schema.AnalysisInput) error) {
	in, err := readInput(cmd)
	if err != nil {
		contract.LogFatal("Cannot read "+name+" input", err)
	}
	if prepare != nil {
		if err := prepare(in); err != nil {
			contract.LogFatal("Cannot prepare "+name+" input", err)
		}
	}
	if err := exec(rootCtx, cfg, storeManager, in); err != nil {
		contract.LogFatal("Cannot run "+name+" analysis", err)
	}
}

// driftCmd compares two texts, or every text of a set against the set centroid.
var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Measure semantic drift between two texts or across a set.",
	Long: `Embed two texts and report their cosine similarity and drift score.

When --input holds a list of texts and no --text-a/--text-b is given, every text
is compared with the centroid of the set instead.

Examples:
  # Compare two statements
  personalens drift --text-a "We ship weekly." --text-b "We ship when ready."

  # Drift of a whole set of statements
  personalens drift --input statements.yaml --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "drift", core.ExecuteDrift, func(in *schema.AnalysisInput) error {
			if a, _ := cmd.Flags().GetString("text-a"); a != "" {
				in.TextA = a
			}
			if b, _ := cmd.Flags().GetString("text-b"); b != "" {
				in.TextB = b
			}
			return nil
		})
	},
}

// timelineCmd tracks drift across dated texts.
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Track drift across dated texts with pairwise and rolling windows.",
	Long: `Sort dated texts and report adjacent-pair drift and rolling-window drift.

The input file holds items with a YYYY-MM-DD date and a text. Entries with an
empty date or text are skipped.

Examples:
  personalens timeline --input posts.yaml --window 3 --stride 1
  personalens timeline --input posts.yaml --output csv --output-file timeline.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "timeline", core.ExecuteTimeline, nil)
	},
}

// clustersCmd groups texts into themes.
var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group texts into themes with seeded k-means.",
	Long: `Cluster text embeddings with k-means++ and label each cluster with its top keywords.

Results are deterministic for a given --seed.

Examples:
  personalens clusters --input statements.yaml --k 3 --seed 42`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "clusters", core.ExecuteClusters, nil)
	},
}

// audioShiftCmd scores voice segments against the opening baseline.
var audioShiftCmd = &cobra.Command{
	Use:   "audio-shift",
	Short: "Detect prosody shifts in a voice recording against its opening baseline.",
	Long: `Score audio segments against the speaker's own opening baseline.

Segments come from --input (precomputed prosody and optional embeddings) or are
extracted from raw 16-bit little-endian PCM given with --pcm. Recordings are
capped at 180 seconds and resampled to 16 kHz before extraction.

Examples:
  personalens audio-shift --input segments.yaml
  personalens audio-shift --pcm voice.raw --sample-rate 48000 --channels 1
  personalens audio-shift --input segments.yaml --use-embeddings --alpha 0.6`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "audio-shift", core.ExecuteAudioShift, func(in *schema.AnalysisInput) error {
			pcmPath, _ := cmd.Flags().GetString("pcm")
			if pcmPath == "" {
				return nil
			}
			sampleRate, _ := cmd.Flags().GetInt("sample-rate")
			channels, _ := cmd.Flags().GetInt("channels")
			data, err := os.ReadFile(pcmPath)
			if err != nil {
				return fmt.Errorf("failed to read PCM file: %w", err)
			}
			segments, err := core.AudioSegmentsFromPCM(data, sampleRate, channels)
			if err != nil {
				return err
			}
			in.Segments = segments
			return nil
		})
	},
}

// videoShiftCmd scores visual embeddings against the opening baseline.
var videoShiftCmd = &cobra.Command{
	Use:   "video-shift",
	Short: "Detect visual shifts in a video against its opening baseline.",
	Long: `Score visual segment embeddings against the opening baseline.

The input holds either segments with embeddings or per-frame embeddings, which
are pooled into 4 second segments with a 2 second hop.

Examples:
  personalens video-shift --input segments.yaml --baseline-sec 20 --threshold 1.25
  personalens video-shift --input frames.yaml --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "video-shift", core.ExecuteVideoShift, nil)
	},
}

// reasonsCmd explains each text with reason tags.
var reasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "Explain texts with reason tags, keywords and lexical signals.",
	Long: `Tag each text with reasons such as hedging, absolutes, buzzwords or a lack of metrics.

With 2 or more texts each one is also compared with the set centroid and flagged
as a semantic outlier when it falls well below its peers.

Examples:
  personalens reasons --input statements.yaml
  personalens reasons --input statements.yaml --indices 0,3`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "reasons", core.ExecuteReasons, func(in *schema.AnalysisInput) error {
			if cmd.Flags().Changed("indices") {
				indices, err := cmd.Flags().GetIntSlice("indices")
				if err != nil {
					return err
				}
				in.Indices = indices
			}
			return nil
		})
	},
}

// signalsCmd counts lexical signals in one text.
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Count metric, buzzword, hedge and absolute signals in a text.",
	Long: `Extract lexical signals from a single text without any embedding.

Examples:
  personalens signals --text "We always deliver. Revenue grew 20% in Q2."`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalysis(cmd, "signals", core.ExecuteSignals, func(in *schema.AnalysisInput) error {
			if text, _ := cmd.Flags().GetString("text"); text != "" {
				in.TextA = text
			}
			return nil
		})
	},
}
