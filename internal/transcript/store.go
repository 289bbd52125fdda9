// Package transcript persists question/answer transcripts and the processed
// extraction log as JSON files.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/jonathan/persona-builder/internal/schemas"
	"github.com/jonathan/persona-builder/internal/types"
)

// Default file names, relative to the working directory.
const (
	DefaultTranscriptFile = "responses.json"
	DefaultProcessedFile  = "processed_responses.json"
)

// LoadTranscript reads every entry from path. A missing or empty file is an
// empty transcript, not an error.
func LoadTranscript(path string) ([]types.TranscriptEntry, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return []types.TranscriptEntry{}, err
	}

	if err := schemas.Validate(schemas.Transcript, data); err != nil {
		return nil, &LoadError{Path: path, Message: "transcript does not match schema", Cause: err}
	}

	var entries []types.TranscriptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal transcript", Cause: err}
	}
	return entries, nil
}

// AppendTranscript adds entries after the existing contents of path and
// rewrites the file. Returns the total number of entries stored.
func AppendTranscript(path string, entries []types.TranscriptEntry) (int, error) {
	existing, err := LoadTranscript(path)
	if err != nil {
		return 0, err
	}

	all := append(existing, entries...)
	if err := writeJSON(path, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// LoadExtractionRecords reads the processed-output file. A missing or empty
// file yields no records.
func LoadExtractionRecords(path string) ([]types.ExtractionRecord, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return []types.ExtractionRecord{}, err
	}

	if err := schemas.Validate(schemas.Processed, data); err != nil {
		return nil, &LoadError{Path: path, Message: "processed output does not match schema", Cause: err}
	}

	var records []types.ExtractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal processed output", Cause: err}
	}
	return records, nil
}

// WriteExtractionRecords overwrites path with records, one per transcript
// entry, including entries whose extraction was malformed.
func WriteExtractionRecords(path string, records []types.ExtractionRecord) error {
	if records == nil {
		records = []types.ExtractionRecord{}
	}
	return writeJSON(path, records)
}

// readOptional returns nil data for a missing or blank file.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return &WriteError{Path: path, Message: "failed to marshal JSON", Cause: err}
	}

	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &WriteError{Path: path, Message: "failed to create output directory", Cause: err}
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Message: "failed to write file", Cause: err}
	}
	return nil
}
