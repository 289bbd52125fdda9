package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/persona-builder/internal/db"
	"github.com/jonathan/persona-builder/internal/observability"
	"github.com/jonathan/persona-builder/internal/ranking"
	"github.com/jonathan/persona-builder/internal/types"
)

// Store persists run artifacts. *db.DB satisfies it.
type Store interface {
	CreateRun(ctx context.Context, target string) (uuid.UUID, error)
	SaveExtractionRecords(ctx context.Context, runID uuid.UUID, records []types.ExtractionRecord, skipped []types.SkippedExtraction) error
	SavePersona(ctx context.Context, runID uuid.UUID, stage string, record *types.PersonaRecord) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

var _ Store = (*db.DB)(nil)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	TranscriptPath string
	ProcessedPath  string
	Target         string
	// TargetPrompt supplies the target when Target is empty. It is called
	// after the merged persona has been printed.
	TargetPrompt func() (string, error)
	Concurrency  int
	// FallbackOnRankError returns the unranked persona, with a warning, when
	// the embedding service fails. Without it a rerank failure fails the run.
	FallbackOnRankError bool
	Verbose             bool
	Out                 io.Writer
	Diagnostics         io.Writer
	Store               Store
}

// RunResult holds everything a run produced
type RunResult struct {
	RunID     uuid.UUID
	Processed *ProcessResult
	Ranked    *types.RankedPersona
	// RankError is set when the fallback was used.
	RankError error
}

// Run processes the transcript into a persona, prints it, and reranks it
// against opts.Target.
func Run(ctx context.Context, extractor AttributeExtractor, reranker *ranking.Reranker, opts RunOptions) (*RunResult, error) {
	opts = opts.withDefaults()

	fmt.Fprintf(opts.Out, "Extracting persona attributes from %s...\n", opts.TranscriptPath)
	processed, err := ProcessFiles(ctx, extractor, opts.TranscriptPath, opts.ProcessedPath, ProcessOptions{
		Concurrency: opts.Concurrency,
		Diagnostics: opts.Diagnostics,
	})
	if err != nil {
		return nil, fmt.Errorf("processing transcript failed: %w", err)
	}
	return Rank(ctx, reranker, processed, opts)
}

// Rank prints the merged persona, reranks it against opts.Target and
// persists the run when a store is configured. The file paths in opts are
// not used.
func Rank(ctx context.Context, reranker *ranking.Reranker, processed *ProcessResult, opts RunOptions) (*RunResult, error) {
	if processed == nil || processed.Persona == nil {
		return nil, fmt.Errorf("no processed persona to rank")
	}
	opts = opts.withDefaults()
	out, diag := opts.Out, opts.Diagnostics
	printer := observability.NewPrinter(out)
	result := &RunResult{Processed: processed}

	if err := printer.PrintPersonaJSON("Final merged data", processed.Persona); err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintSkipped(processed.Skipped)
		printer.PrintPersonaSummary(processed.Persona)
	}

	if opts.Target == "" && opts.TargetPrompt != nil {
		target, err := opts.TargetPrompt()
		if err != nil {
			return nil, fmt.Errorf("reading target failed: %w", err)
		}
		opts.Target = target
	}

	store := opts.Store
	if store != nil {
		result.RunID = startRun(ctx, store, opts.Target, processed, diag, opts.Verbose)
	}

	fmt.Fprintf(out, "Ranking persona items against %q...\n", opts.Target)
	var ranked *types.RankedPersona
	var err error
	if opts.FallbackOnRankError {
		ranked, err = reranker.RerankOrFallback(ctx, processed.Persona, opts.Target)
		if err != nil {
			fmt.Fprintf(diag, "Warning: ranking failed, showing unranked persona: %v\n", err)
			result.RankError = err
		}
	} else {
		ranked, err = reranker.Rerank(ctx, processed.Persona, opts.Target)
		if err != nil {
			finishRun(ctx, store, result.RunID, db.RunStatusFailed, diag)
			return nil, fmt.Errorf("ranking failed: %w", err)
		}
	}
	result.Ranked = ranked
	log.Printf("[RERANK] Ranked %d items in %d categories", ranked.Persona.ItemCount(), ranked.Persona.Len())

	if err := printer.PrintPersonaJSON("Ranked persona", ranked.Persona); err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintRanking(ranked)
	}

	if store != nil && result.RunID != uuid.Nil {
		if err := store.SavePersona(ctx, result.RunID, db.StageRanked, ranked.Persona); err != nil {
			fmt.Fprintf(diag, "Warning: Failed to save ranked persona: %v\n", err)
		}
	}
	finishRun(ctx, store, result.RunID, db.RunStatusCompleted, diag)

	return result, nil
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Diagnostics == nil {
		o.Diagnostics = os.Stderr
	}
	return o
}

// startRun records the run and its extraction artifacts. Failures are
// reported and leave the run unpersisted.
func startRun(ctx context.Context, store Store, target string, processed *ProcessResult, diag io.Writer, verbose bool) uuid.UUID {
	runID, err := store.CreateRun(ctx, target)
	if err != nil {
		fmt.Fprintf(diag, "Warning: Failed to create database run: %v\n", err)
		return uuid.Nil
	}
	if verbose {
		log.Printf("[VERBOSE] Created database run: %s", runID)
	}

	if err := store.SaveExtractionRecords(ctx, runID, processed.Records, processed.Skipped); err != nil {
		fmt.Fprintf(diag, "Warning: Failed to save extraction records: %v\n", err)
	}
	if err := store.SavePersona(ctx, runID, db.StageMerged, processed.Persona); err != nil {
		fmt.Fprintf(diag, "Warning: Failed to save merged persona: %v\n", err)
	}
	return runID
}

func finishRun(ctx context.Context, store Store, runID uuid.UUID, status string, diag io.Writer) {
	if store == nil || runID == uuid.Nil {
		return
	}
	if err := store.CompleteRun(ctx, runID, status); err != nil {
		fmt.Fprintf(diag, "Warning: Failed to complete database run: %v\n", err)
	}
}
