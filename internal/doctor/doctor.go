// Package doctor provides environment preflight checks for formanttts.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/go-formant-tts/internal/audio"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// SynthesizeFunc runs a short end-to-end synthesis and returns the sample
// buffer, or an error if the engine cannot be constructed.
type SynthesizeFunc func() ([]float32, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// AssetsDir is the directory expected to hold config.json and tokenizer.json.
	AssetsDir string
	// VoicesDir is the directory holding voice embedding .bin files.
	VoicesDir string
	// Synthesize runs a probe synthesis. Nil skips the round-trip check.
	Synthesize SynthesizeFunc
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- required bundle assets -------------------------------------------
	for _, name := range []string{"config.json", "tokenizer.json"} {
		path := filepath.Join(cfg.AssetsDir, name)
		if _, err := os.Stat(path); err != nil {
			res.fail(fmt.Sprintf("asset %q: %v", path, err))
			fmt.Fprintf(w, "%s asset %s: not found\n", FailMark, path)
		} else {
			fmt.Fprintf(w, "%s asset: %s\n", PassMark, path)
		}
	}

	// ---- voice embeddings -------------------------------------------------
	count, err := countVoiceFiles(cfg.VoicesDir)
	switch {
	case err != nil:
		// Zero voices is tolerated at runtime, so an unreadable directory
		// is reported but not fatal.
		fmt.Fprintf(w, "%s voices dir %s: %v (default embedding fallback active)\n", PassMark, cfg.VoicesDir, err)
	case count == 0:
		fmt.Fprintf(w, "%s voices dir %s: no .bin files (default embedding fallback active)\n", PassMark, cfg.VoicesDir)
	default:
		fmt.Fprintf(w, "%s voices: %d embedding(s) in %s\n", PassMark, count, cfg.VoicesDir)
	}

	// ---- synthesis round-trip ---------------------------------------------
	if cfg.Synthesize != nil {
		if err := roundTrip(cfg.Synthesize); err != nil {
			res.fail(fmt.Sprintf("synthesis round-trip: %v", err))
			fmt.Fprintf(w, "%s synthesis round-trip: %v\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s synthesis round-trip: ok\n", PassMark)
		}
	}

	return res
}

// roundTrip synthesizes a probe buffer, encodes it to WAV and decodes it
// back, verifying the container carries the sample count unchanged.
func roundTrip(synthesize SynthesizeFunc) error {
	samples, err := synthesize()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("probe synthesis produced no samples")
	}

	encoded, err := audio.EncodeWAV(samples)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	decoded, err := audio.DecodeWAV(encoded)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(decoded) != len(samples) {
		return fmt.Errorf("sample count changed in round-trip: %d != %d", len(decoded), len(samples))
	}
	return nil
}

func countVoiceFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".bin" {
			count++
		}
	}
	return count, nil
}
