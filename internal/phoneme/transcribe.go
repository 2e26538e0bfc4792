package phoneme

import (
	"strings"
	"unicode"
)

// Transcribe converts text into an ordered symbol sequence. Mapping is
// case-insensitive and rune-by-rune: whitespace becomes Silence, sentence
// terminators (. ! ?) become Pause, comma becomes ShortPause, and every
// letter maps through a fixed articulation table. Characters outside the
// table become a generic Consonant. A Transition symbol follows every
// symbol that is not Silence/Pause/ShortPause, separating adjacent
// phonemes on the timeline.
//
// Transcribe is a pure function; identical input yields an identical
// sequence. Empty input yields an empty sequence.
func Transcribe(text string) []Symbol {
	if text == "" {
		return nil
	}

	// Transition insertion can at most double the length.
	out := make([]Symbol, 0, 2*len(text))

	for _, r := range strings.ToLower(text) {
		sym := symbolFor(r)
		out = append(out, sym)

		switch sym.Kind {
		case KindSilence, KindPause, KindShortPause:
			// No separator after quiet segments.
		default:
			out = append(out, Symbol{Kind: KindTransition})
		}
	}

	return out
}

// symbolFor maps a single lower-cased rune to its symbol. Vowel formant
// triples follow the Peterson/Barney averages; consonant constants are the
// engine's fixed articulation set.
func symbolFor(r rune) Symbol {
	switch r {
	case 'a':
		return Symbol{Kind: KindVowel, F1: 730, F2: 1090, F3: 2440}
	case 'e':
		return Symbol{Kind: KindVowel, F1: 270, F2: 2290, F3: 3010}
	case 'i':
		return Symbol{Kind: KindVowel, F1: 390, F2: 1990, F3: 2550}
	case 'o':
		return Symbol{Kind: KindVowel, F1: 570, F2: 840, F3: 2410}
	case 'u':
		return Symbol{Kind: KindVowel, F1: 440, F2: 1020, F3: 2240}

	case 'b', 'p':
		return Symbol{Kind: KindStop, Freq: 1500, Duration: 0.05}
	case 'd', 't':
		return Symbol{Kind: KindStop, Freq: 2500, Duration: 0.04}
	case 'g', 'k':
		return Symbol{Kind: KindStop, Freq: 3000, Duration: 0.06}

	case 's':
		return Symbol{Kind: KindFricative, Freq: 6000, Intensity: 0.7}
	case 'f':
		return Symbol{Kind: KindFricative, Freq: 4000, Intensity: 0.6}
	case 'h':
		return Symbol{Kind: KindFricative, Freq: 2000, Intensity: 0.4}
	case 'z':
		return Symbol{Kind: KindFricative, Freq: 5500, Intensity: 0.6}

	case 'n':
		return Symbol{Kind: KindNasal, F1: 280, F2: 1650}
	case 'm':
		return Symbol{Kind: KindNasal, F1: 250, F2: 1100}

	case 'l':
		return Symbol{Kind: KindLiquid, F1: 400, F2: 1200, F3: 2600}
	case 'r':
		return Symbol{Kind: KindLiquid, F1: 300, F2: 1300, F3: 1600}

	case 'w':
		return Symbol{Kind: KindGlide, F1: 300, F2: 610, F3: 2200}
	case 'y':
		return Symbol{Kind: KindGlide, F1: 235, F2: 2100, F3: 3200}

	case '.', '!', '?':
		return Symbol{Kind: KindPause}
	case ',':
		return Symbol{Kind: KindShortPause}
	}

	if unicode.IsSpace(r) {
		return Symbol{Kind: KindSilence}
	}

	// Unmapped character: generic mid-band consonant.
	return Symbol{Kind: KindConsonant, Freq: 1500}
}
