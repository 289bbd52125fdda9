// Package pipeline provides the high-level orchestration for building a
// persona from a transcript and ranking it against a target.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/persona-builder/internal/extraction"
	"github.com/jonathan/persona-builder/internal/persona"
	"github.com/jonathan/persona-builder/internal/transcript"
	"github.com/jonathan/persona-builder/internal/types"
)

// AttributeExtractor produces the raw extraction for one transcript entry.
type AttributeExtractor interface {
	Extract(ctx context.Context, entry types.TranscriptEntry) (string, error)
}

// ProcessOptions controls the extraction stage.
type ProcessOptions struct {
	// Concurrency bounds in-flight extraction calls. Values below 1 mean one
	// call at a time.
	Concurrency int
	// Diagnostics receives one line per skipped record. Defaults to stderr.
	Diagnostics io.Writer
}

// ProcessResult is the outcome of extracting and merging a transcript.
type ProcessResult struct {
	Persona *types.PersonaRecord
	Records []types.ExtractionRecord
	Merged  int
	Skipped []types.SkippedExtraction

	// ExtraCategories lists merged labels outside the standard six, in
	// first-seen order. They are kept in the persona.
	ExtraCategories []string
}

// ProcessEntries extracts every entry, then validates and merges the results
// in transcript order. Extraction calls may overlap, but nothing touches the
// persona until all of them have returned. A completion-service failure
// aborts the batch and no partial result is returned.
func ProcessEntries(ctx context.Context, extractor AttributeExtractor, entries []types.TranscriptEntry, opts ProcessOptions) (*ProcessResult, error) {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	raws := make([]string, len(entries))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, entry := range entries {
		g.Go(func() error {
			raw, err := extractor.Extract(gCtx, entry)
			if err != nil {
				return fmt.Errorf("extraction failed for entry %d: %w", i+1, err)
			}
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("[EXTRACT] Extracted %d entries", len(entries))

	records := make([]types.ExtractionRecord, len(entries))
	for i, entry := range entries {
		records[i] = types.ExtractionRecord{
			Question:      entry.Question,
			Answer:        entry.Answer,
			RawExtraction: raws[i],
		}
	}
	return MergeRecords(records, opts.Diagnostics), nil
}

// MergeRecords validates each record's raw extraction and folds the valid
// ones into a new persona in order. Malformed records are reported to diag
// and skipped, but stay in the returned record list.
func MergeRecords(records []types.ExtractionRecord, diag io.Writer) *ProcessResult {
	if diag == nil {
		diag = os.Stderr
	}

	result := &ProcessResult{
		Persona: types.NewPersonaRecord(),
		Records: records,
	}
	for i, record := range records {
		parsed, err := extraction.Validate(record.RawExtraction)
		if err != nil {
			//nolint:errcheck // diagnostics are best effort
			fmt.Fprintf(diag, "Warning: skipping entry %d (%q): %v\n", i+1, record.Question, err)
			result.Skipped = append(result.Skipped, types.SkippedExtraction{
				Index:    i,
				Question: record.Question,
				Reason:   err.Error(),
			})
			continue
		}
		result.Persona = persona.Merge(result.Persona, parsed)
		result.Merged++
	}

	for _, label := range result.Persona.Categories() {
		if !types.IsKnownCategory(label) {
			result.ExtraCategories = append(result.ExtraCategories, label)
		}
	}
	if len(result.ExtraCategories) > 0 {
		log.Printf("[MERGE] Keeping non-standard categories: %s", strings.Join(result.ExtraCategories, ", "))
	}

	log.Printf("[MERGE] Merged %d of %d records (%d skipped), %d items in %d categories",
		result.Merged, len(records), len(result.Skipped), result.Persona.ItemCount(), result.Persona.Len())
	return result
}

// ProcessFiles reads the transcript at transcriptPath, processes it and
// overwrites processedPath with one record per entry. A missing transcript
// is processed as empty.
func ProcessFiles(ctx context.Context, extractor AttributeExtractor, transcriptPath, processedPath string, opts ProcessOptions) (*ProcessResult, error) {
	entries, err := transcript.LoadTranscript(transcriptPath)
	if err != nil {
		return nil, err
	}

	result, err := ProcessEntries(ctx, extractor, entries, opts)
	if err != nil {
		return nil, err
	}

	if err := transcript.WriteExtractionRecords(processedPath, result.Records); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadProcessed rebuilds the persona from an existing processed-output file
// without calling the completion service.
func LoadProcessed(processedPath string, diag io.Writer) (*ProcessResult, error) {
	records, err := transcript.LoadExtractionRecords(processedPath)
	if err != nil {
		return nil, err
	}
	return MergeRecords(records, diag), nil
}

var _ AttributeExtractor = (*extraction.Extractor)(nil)
