package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pianoclips/internal/speech"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the voices offered by the configured speech engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := speech.NewEngine(cfg)
			if err != nil {
				return err
			}
			voices, err := engine.Voices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list %s voices: %w", engine.Name(), err)
			}
			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintf(out, "No voices reported by %s\n", engine.Name())
				return nil
			}

			rows := make([][]string, 0, len(voices))
			for i, v := range voices {
				marker := ""
				if selectedVoice(cfg.Speech.Voice, cfg.Speech.VoiceIndex, i, v) {
					marker = "*"
				}
				rows = append(rows, []string{marker, strconv.Itoa(i), v.ID, v.Name, v.Language, v.Gender})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "#", "ID", "Name", "Language", "Gender"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func selectedVoice(configured string, index, position int, v speech.Voice) bool {
	if configured != "" {
		return configured == v.ID || configured == v.Name
	}
	return index == position
}
