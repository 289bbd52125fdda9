package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/persona-builder/internal/db"
	"github.com/jonathan/persona-builder/internal/observability"
	"github.com/jonathan/persona-builder/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted persona runs",
	Long: `Lists the most recent runs stored in PostgreSQL. Requires --db-url or
DATABASE_URL. Use "runs show <id>" to print one run's extraction records and
persona snapshots.`,
	Args: cobra.NoArgs,
	RunE: runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the extraction records and personas of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var (
	runsSettings     settings
	runsShowSettings settings
	runsLimit        int
)

const defaultRunsLimit = 20

var errNoStore = errors.New("no database available: set --db-url or DATABASE_URL")

// runReader is the read side of the run store.
type runReader interface {
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListExtractionRecords(ctx context.Context, runID uuid.UUID) ([]db.StoredExtraction, error)
	GetPersona(ctx context.Context, runID uuid.UUID, stage string) (*types.PersonaRecord, error)
}

var _ runReader = (*db.DB)(nil)

func init() {
	runsSettings.addCommonFlags(runsCmd)
	runsSettings.addStoreFlags(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", defaultRunsLimit, "Maximum number of runs to list")

	runsShowSettings.addCommonFlags(runsShowCmd)
	runsShowSettings.addStoreFlags(runsShowCmd)

	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := openStore(ctx, cmd, &runsSettings)
	if err != nil {
		return err
	}
	defer database.Close()

	return listRuns(ctx, cmd.OutOrStdout(), database, runsLimit)
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	ctx := context.Background()
	database, err := openStore(ctx, cmd, &runsShowSettings)
	if err != nil {
		return err
	}
	defer database.Close()

	return showRun(ctx, cmd.OutOrStdout(), database, runID)
}

func openStore(ctx context.Context, cmd *cobra.Command, s *settings) (*db.DB, error) {
	cfg, err := s.resolve(cmd)
	if err != nil {
		return nil, err
	}
	database := connectStore(ctx, cmd, cfg)
	if database == nil {
		return nil, errNoStore
	}
	return database, nil
}

func listRuns(ctx context.Context, out io.Writer, store runReader, limit int) error {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-9s  %s  %q\n",
			run.ID, run.Status, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Target)
	}
	return nil
}

func showRun(ctx context.Context, out io.Writer, store runReader, runID uuid.UUID) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Fprintf(out, "Run:    %s\n", run.ID)
	fmt.Fprintf(out, "Target: %s\n", run.Target)
	fmt.Fprintf(out, "Status: %s\n", run.Status)

	records, err := store.ListExtractionRecords(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nExtraction records (%d):\n", len(records))
	for _, r := range records {
		marker := ""
		if r.Malformed {
			marker = "  [malformed]"
		}
		fmt.Fprintf(out, "  %d. %s%s\n", r.Position+1, r.Question, marker)
	}

	printer := observability.NewPrinter(out)
	for _, stage := range []string{db.StageMerged, db.StageRanked} {
		record, err := store.GetPersona(ctx, runID, stage)
		if err != nil {
			return err
		}
		if record == nil {
			continue
		}
		fmt.Fprintln(out)
		if err := printer.PrintPersonaJSON(stage+" persona", record); err != nil {
			return err
		}
	}
	return nil
}
