package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Normalize prepares raw input text for synthesis. It normalizes line
// endings to \n, collapses runs of whitespace into a single space, trims
// the result, and rejects empty or whitespace-only input.
//
// Collapsing matters here because output duration scales with character
// count: stray indentation or double spaces would otherwise stretch the
// waveform with silence.
func Normalize(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ErrEmptyText
	}

	return strings.Join(fields, " "), nil
}
