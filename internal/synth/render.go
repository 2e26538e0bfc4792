// Package synth renders phoneme symbol sequences into audio sample
// buffers. Rendering is a pure, single-threaded computation: no I/O, no
// shared state, no cancellation. Determinism is a contract — identical
// inputs must reproduce identical waveforms bit for bit.
package synth

import (
	"math"

	"github.com/example/go-formant-tts/internal/phoneme"
	"github.com/example/go-formant-tts/internal/voice"
)

const twoPi = 2 * math.Pi

// pseudoNoise is the deterministic noise source: a time-indexed sequence,
// not a seeded RNG. The u32 truncation and prime modulus must stay exactly
// as written; changing either changes every fricative in every output.
func pseudoNoise(t float64) float64 {
	return float64(uint32(t*44100.0)%65537)/65537.0 - 0.5
}

// bandNoise approximates band-passed noise by ring-modulating the noise
// source with a sine carrier at the center frequency.
func bandNoise(t, centerFreq float64) float64 {
	return pseudoNoise(t) * math.Sin(twoPi*centerFreq*t) * 0.5
}

// formantGain applies a harmonic-series resonance to input: the first five
// harmonics of the formant frequency, rolled off by 1/sqrt(order). Not a
// true digital filter — a deterministic function of (input, freq, t).
func formantGain(input, formantFreq, t float64) float64 {
	var harmonics float64
	for h := 1; h <= 5; h++ {
		harmonics += math.Sin(twoPi*formantFreq*float64(h)*t) / math.Sqrt(float64(h))
	}
	return input * (1.0 + harmonics*0.3)
}

// renderSample produces one pre-envelope amplitude for the active symbol at
// elapsed time t. Voiced variants build on a sine fundamental at the
// voice's base frequency; fricatives, stops and generic consonants are
// band-limited noise; quiet variants are exactly zero.
//
// Vibrato and breathiness apply to vowels only.
func renderSample(t float64, sym phoneme.Symbol, p voice.Params) float64 {
	switch sym.Kind {
	case phoneme.KindVowel:
		fundamental := math.Sin(twoPi * p.BaseFreq * t)

		vibrato := 1.0
		if p.VibratoRate > 0.1 {
			vibrato = 1.0 + math.Sin(twoPi*p.VibratoRate*t)*0.03
		}

		voiced := (formantGain(fundamental, sym.F1, t)*0.8 +
			formantGain(fundamental, sym.F2, t)*0.6 +
			formantGain(fundamental, sym.F3, t)*0.4) * vibrato

		return voiced + pseudoNoise(t)*p.Breathiness*0.1

	case phoneme.KindNasal:
		fundamental := math.Sin(twoPi * p.BaseFreq * t)
		return (formantGain(fundamental, sym.F1, t)*0.6 +
			formantGain(fundamental, sym.F2, t)*0.4) * 0.8

	case phoneme.KindLiquid:
		fundamental := math.Sin(twoPi * p.BaseFreq * t)
		return (formantGain(fundamental, sym.F1, t)*0.7 +
			formantGain(fundamental, sym.F2, t)*0.5 +
			formantGain(fundamental, sym.F3, t)*0.3) * 0.7

	case phoneme.KindGlide:
		fundamental := math.Sin(twoPi * p.BaseFreq * t)
		return (formantGain(fundamental, sym.F1, t)*0.6 +
			formantGain(fundamental, sym.F2, t)*0.4 +
			formantGain(fundamental, sym.F3, t)*0.3) * 0.6

	case phoneme.KindFricative:
		return bandNoise(t, sym.Freq) * sym.Intensity * 0.5

	case phoneme.KindStop:
		return bandNoise(t, sym.Freq) * 0.7

	case phoneme.KindConsonant:
		return bandNoise(t, sym.Freq) * 0.4

	default:
		// Silence, Pause, ShortPause, Transition.
		return 0.0
	}
}
