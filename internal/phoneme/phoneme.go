// Package phoneme maps raw text to the symbol timeline consumed by the
// synthesis engine. Symbols are pure values; a sequence is produced fresh
// per request and never shared.
package phoneme

// Kind discriminates the symbol variants. The renderer switches over Kind,
// so adding a variant requires a matching rendering rule.
type Kind int

const (
	KindVowel Kind = iota
	KindFricative
	KindStop
	KindNasal
	KindLiquid
	KindGlide
	KindConsonant
	KindSilence
	KindPause
	KindShortPause
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindVowel:
		return "vowel"
	case KindFricative:
		return "fricative"
	case KindStop:
		return "stop"
	case KindNasal:
		return "nasal"
	case KindLiquid:
		return "liquid"
	case KindGlide:
		return "glide"
	case KindConsonant:
		return "consonant"
	case KindSilence:
		return "silence"
	case KindPause:
		return "pause"
	case KindShortPause:
		return "short-pause"
	case KindTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// Symbol is one segment on the synthesis timeline. Which fields are
// meaningful depends on Kind:
//
//	Vowel, Liquid, Glide  — F1, F2, F3 formant centers (Hz)
//	Nasal                 — F1, F2
//	Fricative             — Freq (noise center), Intensity
//	Stop                  — Freq (burst center), Duration (s)
//	Consonant             — Freq
//	Silence, Pause, ShortPause, Transition — no payload, rendered as zero
type Symbol struct {
	Kind      Kind
	F1        float64
	F2        float64
	F3        float64
	Freq      float64
	Intensity float64
	Duration  float64
}

// Voiced reports whether the symbol is rendered from a sine fundamental
// rather than from filtered noise or silence.
func (s Symbol) Voiced() bool {
	switch s.Kind {
	case KindVowel, KindNasal, KindLiquid, KindGlide:
		return true
	default:
		return false
	}
}
