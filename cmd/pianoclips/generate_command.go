package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pianoclips/internal/layout"
	"pianoclips/internal/ledger"
	"pianoclips/internal/pipeline"
)

type generateFlags struct {
	first   *int
	last    *int
	workers *int
}

func (g *generateFlags) register(cmd *cobra.Command) {
	g.first = cmd.Flags().Int("first", -1, "First key index to generate (overrides keyboard.first_key)")
	g.last = cmd.Flags().Int("last", -1, "Last key index to generate (overrides keyboard.last_key)")
	g.workers = cmd.Flags().Int("workers", 0, "Keys processed concurrently (overrides pipeline.workers)")
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	gen := generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate clips for the configured key range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, gen)
		},
	}
	gen.register(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, gen generateFlags) error {
	loaded, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := *loaded
	if cmd.Flags().Changed("first") {
		cfg.Keyboard.FirstKey = *gen.first
	}
	if cmd.Flags().Changed("last") {
		cfg.Keyboard.LastKey = *gen.last
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = *gen.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := ctx.logger(&cfg)
	if err != nil {
		return err
	}
	kb, err := pipeline.KeyboardFor(&cfg)
	if err != nil {
		return err
	}
	stages, err := pipeline.Build(&cfg, logger)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	runner, err := pipeline.NewRunner(pipeline.Options{
		Config:    &cfg,
		Logger:    logger,
		Stages:    stages,
		Keyboard:  kb,
		Ledger:    store,
		Preflight: pipeline.Preflight,
	})
	if err != nil {
		return err
	}

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %d of %d keys in %s (run %s)\n",
		summary.Completed, summary.Keys, summary.Elapsed.Round(time.Millisecond), summary.RunID)
	fmt.Fprintf(out, "Clips written to %s\n", layout.New(cfg.Paths).Dir(layout.Video))
	return nil
}
