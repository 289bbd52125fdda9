//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/persona-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestRunLifecycle_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "Data Scientist")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)

	run, err := db.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "Data Scientist", run.Target)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, db.CompleteRun(ctx, runID, RunStatusCompleted))
	run, err = db.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
}

func TestGetRun_NotFound_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run, err := db.GetRun(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestSaveExtractionRecords_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "")
	require.NoError(t, err)

	records := []types.ExtractionRecord{
		{Question: "q1", Answer: "a1", RawExtraction: `{"Skills": ["Go"]}`},
		{Question: "q2", Answer: "a2", RawExtraction: "not json"},
		{Question: "q3", Answer: "a3", RawExtraction: `{}`},
	}
	skipped := []types.SkippedExtraction{{Index: 1, Question: "q2", Reason: "malformed"}}
	require.NoError(t, db.SaveExtractionRecords(ctx, runID, records, skipped))

	stored, err := db.ListExtractionRecords(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "q1", stored[0].Question)
	assert.False(t, stored[0].Malformed)
	assert.True(t, stored[1].Malformed)
	assert.Equal(t, "not json", stored[1].ProcessedResponse)
	assert.Equal(t, 2, stored[2].Position)
}

func TestPersonaSnapshots_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "Backend Engineer")
	require.NoError(t, err)

	merged := types.NewPersonaRecord()
	merged.Set("Skills", []string{"Python", "Go"})
	merged.Set("Education", []string{"Bachelors"})
	merged.Set("Goals", []string{})
	require.NoError(t, db.SavePersona(ctx, runID, StageMerged, merged))

	got, err := db.GetPersona(ctx, runID, StageMerged)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, merged.Equal(got))

	missing, err := db.GetPersona(ctx, runID, StageRanked)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// saving the same stage again replaces the snapshot
	ranked := merged.Clone()
	ranked.Set("Skills", []string{"Go", "Python"})
	require.NoError(t, db.SavePersona(ctx, runID, StageMerged, ranked))
	got, err = db.GetPersona(ctx, runID, StageMerged)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Python"}, got.Items("Skills"))
}
