package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Consistency label constants.
const (
	ConsistentValue = "Consistent" // Consistent value
	SteadyValue     = "Steady"     // Steady value
	ShiftingValue   = "Shifting"   // Shifting value
	VolatileValue   = "Volatile"   // Volatile value
)

// Color variables for console output.
var (
	ConsistentColor = color.New(color.FgGreen, color.Bold) // ConsistentColor marks a run that stays on its baseline.
	SteadyColor     = color.New(color.FgCyan)              // SteadyColor marks minor movement.
	ShiftingColor   = color.New(color.FgYellow)            // ShiftingColor marks noticeable movement, not bold.
	VolatileColor   = color.New(color.FgRed, color.Bold)   // VolatileColor marks a run far from its baseline.
	SpikeColor      = color.New(color.FgMagenta, color.Bold)
)

// GetPlainLabel returns a plain text label for a 0..100 consistency score.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return ConsistentValue
	case score >= 60:
		return SteadyValue
	case score >= 40:
		return ShiftingValue
	default:
		return VolatileValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case ConsistentValue:
		return ConsistentColor.Sprint(text)
	case SteadyValue:
		return SteadyColor.Sprint(text)
	case ShiftingValue:
		return ShiftingColor.Sprint(text)
	default: // "Volatile"
		return VolatileColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

func homePath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetVaultDBFilePath returns the path to the SQLite DB file for the report vault.
func GetVaultDBFilePath() string {
	return homePath(".personalens_vault.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	return homePath(".personalens_runs.db")
}

// GetEmbedCacheDir returns the directory of the on-disk embedding cache.
func GetEmbedCacheDir() string {
	return homePath(".personalens_embed_cache")
}

// Truncate shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one rune.
func Truncate(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
