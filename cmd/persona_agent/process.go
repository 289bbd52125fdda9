package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/extraction"
	"github.com/jonathan/persona-builder/internal/observability"
	"github.com/jonathan/persona-builder/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract persona attributes from the transcript and merge them",
	Long: `Calls the language model once per transcript entry, validates each extraction,
and merges the valid ones into a single persona. Every extraction, malformed or
not, is written to the processed-output file, which is overwritten.`,
	RunE: runProcess,
}

var processSettings settings

func init() {
	processSettings.addCommonFlags(processCmd)
	processSettings.addFileFlags(processCmd, true)
	processSettings.addCompletionFlags(processCmd)

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := processSettings.resolve(cmd)
	if err != nil {
		return err
	}

	client, err := newCompletionClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := cmd.OutOrStdout()
	result, err := pipeline.ProcessFiles(ctx, extraction.NewExtractor(client), cfg.TranscriptFile, cfg.ProcessedFile, pipeline.ProcessOptions{
		Concurrency: cfg.Concurrency,
		Diagnostics: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Processed responses saved to %s\n", cfg.ProcessedFile)
	printer := observability.NewPrinter(out)
	if cfg.Verbose {
		printer.PrintSkipped(result.Skipped)
		printer.PrintPersonaSummary(result.Persona)
	}
	return printer.PrintPersonaJSON("Final merged data", result.Persona)
}
