package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/config"
	"github.com/jonathan/persona-builder/internal/transcript"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Ask coaching questions and append the answers to the transcript",
	Long: `Prompts for up to --max-questions questions, then collects an answer for each,
either typed at the console or role-played by the language model (--simulate).
The exchanges are appended to the transcript file.`,
	RunE: runCollect,
}

var collectSettings settings

func init() {
	collectSettings.addCommonFlags(collectCmd)
	collectSettings.addFileFlags(collectCmd, false)
	collectSettings.addCollectFlags(collectCmd)
	collectSettings.addCompletionFlags(collectCmd)

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := collectSettings.resolve(cmd)
	if err != nil {
		return err
	}

	c := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	_, err = collectAndSave(ctx, c, cfg)
	return err
}

// collectAndSave runs the question/answer loop and appends the result.
// Returns the number of exchanges recorded.
func collectAndSave(ctx context.Context, c *console, cfg config.Config) (int, error) {
	questions, err := c.readQuestions(cfg.MaxQuestions)
	if err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		fmt.Fprintln(c.out, "No questions entered.")
		return 0, nil
	}

	answer := consoleAnswers(c)
	if cfg.SimulateAnswers {
		client, err := newCompletionClient(ctx, cfg)
		if err != nil {
			return 0, err
		}
		defer func() { _ = client.Close() }()
		answer = simulatedAnswers(client)
	}

	fmt.Fprintln(c.out, "--==+ Processing Responses +==--")
	entries, err := collectTranscript(ctx, questions, answer)
	if err != nil {
		return 0, fmt.Errorf("collecting answers failed: %w", err)
	}

	total, err := transcript.AppendTranscript(cfg.TranscriptFile, entries)
	if err != nil {
		return 0, err
	}
	printSaved(c.out, len(entries), total, cfg.TranscriptFile)
	return len(entries), nil
}

func printSaved(out io.Writer, added, total int, path string) {
	fmt.Fprintf(out, "Responses saved to %s (%d added, %d total)\n", path, added, total)
}
