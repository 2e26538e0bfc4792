package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/go-formant-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newVoicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List loaded voice identifiers",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			svc, err := tts.NewService(cfg)
			if err != nil {
				return err
			}

			ids := svc.ListVoices()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]string{"voices": ids})
			}

			if len(ids) == 0 {
				fmt.Fprintln(os.Stdout, "no voices loaded (default embedding fallback active)")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(os.Stdout, id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of plain text")

	return cmd
}
