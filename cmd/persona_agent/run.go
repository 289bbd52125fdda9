package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/extraction"
	"github.com/jonathan/persona-builder/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Collect answers, build the persona and rank it end-to-end",
	Long: `Orchestrates the whole process: collect -> extract -> validate -> merge -> rank.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runSettings    settings
	runSkipCollect bool
)

func init() {
	runSettings.addCommonFlags(runCommand)
	runSettings.addFileFlags(runCommand, true)
	runSettings.addCollectFlags(runCommand)
	runSettings.addCompletionFlags(runCommand)
	runSettings.addRankFlags(runCommand)
	runSettings.addStoreFlags(runCommand)
	runCommand.Flags().BoolVar(&runSkipCollect, "skip-collect", false, "Process the existing transcript without asking new questions")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := runSettings.resolve(cmd)
	if err != nil {
		return err
	}
	if cfg.Verbose && runSettings.configPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded config from: %s\n", runSettings.configPath)
	}

	client, err := newCompletionClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	c := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	if !runSkipCollect {
		if _, err := collectAndSave(ctx, c, cfg); err != nil {
			return err
		}
	}

	reranker, closeEmbedder, err := newReranker(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeEmbedder() }()

	opts := runOptions(cmd, cfg, c)
	if database := connectStore(ctx, cmd, cfg); database != nil {
		defer database.Close()
		opts.Store = database
	}

	result, err := pipeline.Run(ctx, extraction.NewExtractor(client), reranker, opts)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "[VERBOSE] Merged %d of %d records\n", result.Processed.Merged, len(result.Processed.Records))
	}
	return nil
}
