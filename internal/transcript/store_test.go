package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/persona-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTranscript_MissingFileIsEmpty(t *testing.T) {
	entries, err := LoadTranscript(filepath.Join(t.TempDir(), "responses.json"))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLoadTranscript_BlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	entries, err := LoadTranscript(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadTranscript_ReadsOriginalFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.json")
	content := `[
    {
        "user1": "Please introduce yourself",
        "user2": "My name is Alice and I have a bachelors degree."
    },
    {
        "user1": "What are your goals?",
        "user2": "To lead a data team."
    }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := LoadTranscript(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Please introduce yourself", entries[0].Question)
	assert.Equal(t, "To lead a data team.", entries[1].Answer)
}

func TestLoadTranscript_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON", "{ invalid json }"},
		{"missing answer", `[{"user1": "q"}]`},
		{"object instead of list", `{"user1": "q", "user2": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "responses.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadTranscript(path)
			require.Error(t, err)
			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}
}

func TestAppendTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "responses.json")

	total, err := AppendTranscript(path, []types.TranscriptEntry{{Question: "q1", Answer: "a1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = AppendTranscript(path, []types.TranscriptEntry{
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	entries, err := LoadTranscript(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"q1", "q2", "q3"}, []string{entries[0].Question, entries[1].Question, entries[2].Question})
}

func TestWriteExtractionRecords_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_responses.json")

	first := []types.ExtractionRecord{
		{Question: "q1", Answer: "a1", RawExtraction: `{"Skills": ["Go"]}`},
		{Question: "q2", Answer: "a2", RawExtraction: "not json"},
	}
	require.NoError(t, WriteExtractionRecords(path, first))

	second := []types.ExtractionRecord{{Question: "q3", Answer: "a3", RawExtraction: "{}"}}
	require.NoError(t, WriteExtractionRecords(path, second))

	records, err := LoadExtractionRecords(path)
	require.NoError(t, err)
	assert.Equal(t, second, records)
}

func TestWriteExtractionRecords_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_responses.json")
	require.NoError(t, WriteExtractionRecords(path, []types.ExtractionRecord{
		{Question: "q", Answer: "a", RawExtraction: `{"Goals": []}`},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"question": "q", "response": "a", "processed_response": "{\"Goals\": []}"}]`, string(data))
}

func TestWriteExtractionRecords_NilWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_responses.json")
	require.NoError(t, WriteExtractionRecords(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestLoadExtractionRecords_MissingFileIsEmpty(t *testing.T) {
	records, err := LoadExtractionRecords(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, records)
}
