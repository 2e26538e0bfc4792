package voice

import "math"

// Params are the four scalar acoustic parameters that individuate a voice.
// They are derived fresh on every synthesis request from the immutable
// embedding table and never cached.
type Params struct {
	BaseFreq     float64 // fundamental frequency, 80–280 Hz
	FormantShift float64 // 0.8–1.4; derived but not applied in rendering
	Breathiness  float64 // noise mix for vowels, 0–0.5
	VibratoRate  float64 // vibrato frequency, 0–5 Hz
}

// Per-index defaults used when the embedding is shorter than four elements.
const (
	defaultBaseFreqSeed     = 0.5
	defaultFormantShiftSeed = 0.5
	defaultBreathinessSeed  = 0.3
	defaultVibratoSeed      = 0.1
)

// DeriveParams maps the first four embedding elements to voice parameters.
// It is a pure function of the vector: calling it twice yields bit-identical
// results.
func DeriveParams(embedding []float32) Params {
	return Params{
		BaseFreq:     80.0 + math.Abs(at(embedding, 0, defaultBaseFreqSeed))*200.0,
		FormantShift: 0.8 + math.Abs(at(embedding, 1, defaultFormantShiftSeed))*0.6,
		Breathiness:  math.Min(math.Abs(at(embedding, 2, defaultBreathinessSeed)), 0.5),
		VibratoRate:  math.Abs(at(embedding, 3, defaultVibratoSeed)) * 5.0,
	}
}

// Params resolves id through the fallback chain and derives its parameters.
func (t *Table) Params(id string) Params {
	return DeriveParams(t.Resolve(id))
}

func at(v []float32, i int, def float64) float64 {
	if i < len(v) {
		return float64(v[i])
	}
	return def
}
