package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/go-formant-tts/internal/bench"
	"github.com/example/go-formant-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var text string
	var voice string
	var speed float64
	var runs int
	var asJSON bool
	var rtfThreshold float64

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure synthesis throughput",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be >= 1, got %d", runs)
			}

			svc, err := tts.NewService(cfg)
			if err != nil {
				return err
			}

			selectedVoice := cfg.TTS.Voice
			if voice != "" {
				selectedVoice = voice
			}

			results := make([]bench.RunResult, 0, runs)
			durations := make([]time.Duration, 0, runs)
			var meanRTFSum float64

			for i := 0; i < runs; i++ {
				start := time.Now()
				samples, err := svc.Synthesize(text, selectedVoice, speed)
				elapsed := time.Since(start)
				if err != nil {
					return fmt.Errorf("bench run %d: %w", i+1, err)
				}

				audioDur := bench.AudioDuration(len(samples))
				rtf := bench.CalcRTF(elapsed, audioDur)
				results = append(results, bench.RunResult{
					Index:         i,
					Cold:          i == 0,
					Duration:      elapsed,
					AudioDuration: audioDur,
					RTF:           rtf,
				})
				durations = append(durations, elapsed)
				meanRTFSum += rtf
			}

			stats := bench.ComputeStats(durations)
			if asJSON {
				bench.FormatJSON(results, stats, os.Stdout)
			} else {
				bench.FormatTable(results, stats, os.Stdout)
			}

			return bench.CheckRTFThreshold(meanRTFSum/float64(runs), rtfThreshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "The quick brown fox jumps over the lazy dog.", "Text to synthesize per run")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice id (overrides config)")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Speed multiplier")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of synthesis runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Fail if mean RTF exceeds this value (0 disables)")

	return cmd
}
