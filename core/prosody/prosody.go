// Package prosody extracts loudness, zero-crossing, pause and pitch features from mono PCM samples.
package prosody

import (
	"math"

	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Extraction parameters.
const (
	PitchMinHz       = 70.0
	PitchMaxHz       = 350.0
	SilenceThreshold = 0.01
	minPitchSeconds  = 0.05
	minPeak          = 0.25
	eps              = 1e-8
)

// Extract measures the prosody of a mono segment sampled at sampleRate.
func Extract(samples []float64, sampleRate int) schema.ProsodyFeatures {
	if len(samples) == 0 {
		return schema.ProsodyFeatures{}
	}
	return schema.ProsodyFeatures{
		RMS:        RMS(samples),
		ZCR:        ZeroCrossingRate(samples),
		PauseRatio: PauseRatio(samples, SilenceThreshold),
		PitchHz:    Pitch(samples, sampleRate, PitchMinHz, PitchMaxHz),
	}
}

// RMS is the root mean square loudness.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x)/float64(len(x)) + eps)
}

// ZeroCrossingRate is the share of adjacent samples whose sign differs. Zero counts as positive.
func ZeroCrossingRate(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(x); i++ {
		if (x[i] < 0) != (x[i-1] < 0) {
			changes++
		}
	}
	return float64(changes) / float64(len(x)-1)
}

// PauseRatio is the share of samples quieter than thr.
func PauseRatio(x []float64, thr float64) float64 {
	if len(x) == 0 {
		return 0
	}
	quiet := 0
	for _, v := range x {
		if math.Abs(v) < thr {
			quiet++
		}
	}
	return float64(quiet) / float64(len(x))
}

// Pitch estimates the fundamental frequency by autocorrelation of a Hann-windowed signal.
// It returns 0 for unvoiced or too-short input.
func Pitch(x []float64, sampleRate int, fmin, fmax float64) float64 {
	n := len(x)
	if sampleRate <= 0 || n < int(minPitchSeconds*float64(sampleRate)) || n < 2 {
		return 0
	}

	mean := stat.Mean(x, nil)
	xw := make([]float64, n)
	for i, v := range x {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		xw[i] = (v - mean) * w
	}

	lagMin := int(float64(sampleRate) / fmax)
	lagMax := min(int(float64(sampleRate)/fmin), n-1)
	if lagMax <= lagMin+2 {
		return 0
	}

	ac0 := floats.Dot(xw, xw) + eps
	peakLag, peak := lagMin, math.Inf(-1)
	for lag := lagMin; lag < lagMax; lag++ {
		v := floats.Dot(xw[:n-lag], xw[lag:]) / ac0
		if v > peak {
			peakLag, peak = lag, v
		}
	}
	if peak < minPeak || peakLag == 0 {
		return 0
	}
	return float64(sampleRate) / float64(peakLag)
}
