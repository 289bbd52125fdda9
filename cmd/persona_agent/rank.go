package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/config"
	"github.com/jonathan/persona-builder/internal/pipeline"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the processed persona against a target",
	Long: `Rebuilds the persona from the processed-output file without calling the
language model, then reorders every category by embedding similarity to the
target. The target is prompted for when --target is not given.`,
	RunE: runRank,
}

var rankSettings settings

func init() {
	rankSettings.addCommonFlags(rankCmd)
	rankSettings.addFileFlags(rankCmd, true)
	rankSettings.addCompletionFlags(rankCmd)
	rankSettings.addRankFlags(rankCmd)
	rankSettings.addStoreFlags(rankCmd)

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := rankSettings.resolve(cmd)
	if err != nil {
		return err
	}

	processed, err := pipeline.LoadProcessed(cfg.ProcessedFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	reranker, closeEmbedder, err := newReranker(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeEmbedder() }()

	opts := runOptions(cmd, cfg, newConsole(cmd.InOrStdin(), cmd.OutOrStdout()))
	if database := connectStore(ctx, cmd, cfg); database != nil {
		defer database.Close()
		opts.Store = database
	}

	_, err = pipeline.Rank(ctx, reranker, processed, opts)
	return err
}

// runOptions maps the resolved config onto pipeline options. The target is
// read from c when none was configured.
func runOptions(cmd *cobra.Command, cfg config.Config, c *console) pipeline.RunOptions {
	return pipeline.RunOptions{
		TranscriptPath:      cfg.TranscriptFile,
		ProcessedPath:       cfg.ProcessedFile,
		Target:              cfg.Target,
		TargetPrompt:        c.readTarget,
		Concurrency:         cfg.Concurrency,
		FallbackOnRankError: cfg.FallbackUnranked,
		Verbose:             cfg.Verbose,
		Out:                 cmd.OutOrStdout(),
		Diagnostics:         cmd.ErrOrStderr(),
	}
}
