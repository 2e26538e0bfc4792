package main

import (
	"fmt"
	"os"

	"github.com/example/go-formant-tts/internal/doctor"
	"github.com/example/go-formant-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			res := doctor.Run(doctor.Config{
				AssetsDir: cfg.Paths.AssetsDir,
				VoicesDir: cfg.Paths.VoicesDir,
				Synthesize: func() ([]float32, error) {
					svc, err := tts.NewService(cfg)
					if err != nil {
						return nil, err
					}
					return svc.Synthesize("test", cfg.TTS.Voice, 1.0)
				},
			}, os.Stdout)

			if res.Failed() {
				return fmt.Errorf("%d check(s) failed", len(res.Failures()))
			}
			return nil
		},
	}

	return cmd
}
