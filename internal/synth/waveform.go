package synth

import (
	"math"
	"unicode/utf8"

	"github.com/example/go-formant-tts/internal/phoneme"
	"github.com/example/go-formant-tts/internal/voice"
)

const (
	// SampleRate is the output rate of every waveform this package produces.
	SampleRate = 22050

	// secondsPerChar sets the nominal duration contributed by each input
	// character at speed 1.0.
	secondsPerChar = 0.12

	// fadeSeconds is the linear fade-in/fade-out window at the buffer edges.
	fadeSeconds = 0.05

	// masterGain scales the final waveform to leave headroom.
	masterGain = 0.3
)

// Waveform synthesizes text into a sample buffer using the given voice
// parameters. The buffer length is round(SampleRate * runes(text) * 0.12 /
// speed); empty text yields an empty buffer. The caller owns the returned
// slice.
//
// Precondition: speed is positive and finite. Validation belongs to the
// caller (the service layer); a non-positive speed here would produce a
// non-positive duration and divide-by-zero progress.
func Waveform(text string, p voice.Params, speed float64) []float32 {
	charCount := utf8.RuneCountInString(text)
	if charCount == 0 {
		return []float32{}
	}

	phonemes := phoneme.Transcribe(text)

	totalDuration := float64(charCount) * secondsPerChar / speed
	sampleCount := int(math.Round(SampleRate * totalDuration))

	out := make([]float32, sampleCount)
	for i := 0; i < sampleCount; i++ {
		t := float64(i) / SampleRate
		progress := t / totalDuration

		// The active symbol is selected by synthesis progress. Float
		// rounding can push the index past the end; out of range means
		// silence.
		var sym phoneme.Symbol
		sym.Kind = phoneme.KindSilence
		if idx := int(progress * float64(len(phonemes))); idx >= 0 && idx < len(phonemes) {
			sym = phonemes[idx]
		}

		sample := renderSample(t, sym, p)

		envelope := 1.0
		if t < fadeSeconds {
			envelope = t / fadeSeconds
		} else if t > totalDuration-fadeSeconds {
			envelope = (totalDuration - t) / fadeSeconds
		}

		out[i] = float32(sample * envelope * masterGain)
	}

	return out
}

// Duration returns the playback length in seconds of a buffer produced by
// Waveform.
func Duration(sampleCount int) float64 {
	return float64(sampleCount) / SampleRate
}
