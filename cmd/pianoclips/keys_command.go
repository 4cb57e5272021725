package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pianoclips/internal/pipeline"
	"pianoclips/internal/speech"
)

func newKeysCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys in the configured range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := *cfg
			if all {
				view.Keyboard.FirstKey = 0
				view.Keyboard.LastKey = 87
			}
			kb, err := pipeline.KeyboardFor(&view)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, kb.Len())
			for _, key := range kb.Keys() {
				rows = append(rows, []string{
					strconv.Itoa(key.Index),
					key.Name,
					speech.Speakable(key.Name),
					strconv.Itoa(key.MIDI()),
					strconv.FormatFloat(key.Frequency(), 'f', 2, 64),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Index", "Name", "Spoken", "MIDI", "Hz"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List all 88 keys regardless of the configured range")
	return cmd
}
