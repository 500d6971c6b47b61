package prosody

import (
	"encoding/binary"
	"fmt"

	"github.com/personalens/personalens/core/segment"
	"github.com/personalens/personalens/schema"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Signal is a mono recording normalized to [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
	Truncated  bool
}

// DecodePCM16 reads interleaved signed 16-bit little-endian PCM and downmixes it to mono.
func DecodePCM16(data []byte, sampleRate, channels int) (Signal, error) {
	if sampleRate <= 0 {
		return Signal{}, schema.InvalidParameter("sampleRate", "must be > 0, got %d", sampleRate)
	}
	if channels < 1 {
		return Signal{}, schema.InvalidParameter("channels", "must be >= 1, got %d", channels)
	}
	frameBytes := 2 * channels
	frames := len(data) / frameBytes
	if frames == 0 {
		return Signal{}, schema.EmptyInput("pcm")
	}
	out := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			off := i*frameBytes + 2*c
			sum += float64(int16(binary.LittleEndian.Uint16(data[off:]))) / 32768.0
		}
		out[i] = sum / float64(channels)
	}
	return Signal{Samples: out, SampleRate: sampleRate}, nil
}

// Resample converts the signal to targetRate. A signal already at that rate is returned as is.
func Resample(sig Signal, targetRate int) (Signal, error) {
	if sig.SampleRate == targetRate {
		return sig, nil
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(sig.SampleRate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Signal{}, fmt.Errorf("failed to create resampler: %w", err)
	}
	out, err := r.Process(sig.Samples)
	if err != nil {
		return Signal{}, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return Signal{}, fmt.Errorf("resample flush error: %w", err)
	}
	out = append(out, tail...)
	want := int(int64(len(sig.Samples)) * int64(targetRate) / int64(sig.SampleRate))
	return Signal{Samples: fitLength(out, want), SampleRate: targetRate, Truncated: sig.Truncated}, nil
}

// fitLength trims samples to n or pads them with silence up to n.
func fitLength(samples []float64, n int) []float64 {
	if len(samples) >= n {
		return samples[:n]
	}
	return append(samples, make([]float64, n-len(samples))...)
}

// Truncate caps the signal at maxSeconds.
func Truncate(sig Signal, maxSeconds int) Signal {
	limit := maxSeconds * sig.SampleRate
	if maxSeconds <= 0 || len(sig.Samples) <= limit {
		return sig
	}
	return Signal{Samples: sig.Samples[:limit], SampleRate: sig.SampleRate, Truncated: true}
}

// Segments cuts the signal into window/hop segments with their prosody filled in.
func Segments(sig Signal, windowMs, hopMs int) []schema.Segment {
	win := windowMs * sig.SampleRate / 1000
	hop := hopMs * sig.SampleRate / 1000
	spans := segment.Spans(len(sig.Samples), win, hop)

	out := make([]schema.Segment, len(spans))
	for i, sp := range spans {
		p := Extract(sig.Samples[sp.Start:sp.End], sig.SampleRate)
		out[i] = schema.Segment{
			StartMs:    sp.Start * 1000 / sig.SampleRate,
			EndMs:      sp.End * 1000 / sig.SampleRate,
			Prosody:    &p,
			RawMetrics: Metrics(p),
		}
	}
	return out
}

// Metrics flattens prosody features into a named metric map.
func Metrics(p schema.ProsodyFeatures) map[string]float64 {
	return map[string]float64{
		"rms":        p.RMS,
		"zcr":        p.ZCR,
		"pauseRatio": p.PauseRatio,
		"pitchHz":    p.PitchHz,
	}
}

// FromMetrics reads prosody features back from a metric map.
func FromMetrics(m map[string]float64) (schema.ProsodyFeatures, bool) {
	rms, ok := m["rms"]
	if !ok {
		return schema.ProsodyFeatures{}, false
	}
	return schema.ProsodyFeatures{
		RMS:        rms,
		ZCR:        m["zcr"],
		PauseRatio: m["pauseRatio"],
		PitchHz:    m["pitchHz"],
	}, true
}
