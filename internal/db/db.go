// Package db provides optional PostgreSQL storage for persona runs.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/persona-builder/internal/schemas"
	"github.com/jonathan/persona-builder/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the persona tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, target string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO persona_runs (id, target, status) VALUES ($1, $2, $3)`,
		id, target, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE persona_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when no run exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, target, status, created_at, completed_at
		 FROM persona_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Target, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, target, status, created_at, completed_at
		 FROM persona_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Target, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveExtractionRecords stores every extraction record of a run in transcript
// order. Records listed in skipped are flagged as malformed.
func (db *DB) SaveExtractionRecords(ctx context.Context, runID uuid.UUID, records []types.ExtractionRecord, skipped []types.SkippedExtraction) error {
	malformed := make(map[int]bool, len(skipped))
	for _, s := range skipped {
		malformed[s.Index] = true
	}

	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(
			`INSERT INTO extraction_records (run_id, position, question, response, processed_response, malformed)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (run_id, position) DO UPDATE
			 SET question = $3, response = $4, processed_response = $5, malformed = $6`,
			runID, i, r.Question, r.Answer, r.RawExtraction, malformed[i],
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save extraction record %d: %w", i, err)
		}
	}
	return nil
}

// ListExtractionRecords returns the stored records of a run in position order
func (db *DB) ListExtractionRecords(ctx context.Context, runID uuid.UUID) ([]StoredExtraction, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT position, question, response, processed_response, malformed
		 FROM extraction_records WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list extraction records: %w", err)
	}
	defer rows.Close()

	var records []StoredExtraction
	for rows.Next() {
		var r StoredExtraction
		if err := rows.Scan(&r.Position, &r.Question, &r.Response, &r.ProcessedResponse, &r.Malformed); err != nil {
			return nil, fmt.Errorf("failed to scan extraction record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SavePersona stores a persona snapshot for a run stage, replacing any
// earlier snapshot for the same stage
func (db *DB) SavePersona(ctx context.Context, runID uuid.UUID, stage string, record *types.PersonaRecord) error {
	if record == nil {
		record = types.NewPersonaRecord()
	}
	if err := schemas.ValidateValue(schemas.Persona, record); err != nil {
		return fmt.Errorf("refusing to save %s persona: %w", stage, err)
	}
	content, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal persona: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO persona_snapshots (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, stage, string(content),
	)
	if err != nil {
		return fmt.Errorf("failed to save persona: %w", err)
	}
	return nil
}

// GetPersona loads the persona snapshot for a run stage. Returns nil when no
// snapshot exists.
func (db *DB) GetPersona(ctx context.Context, runID uuid.UUID, stage string) (*types.PersonaRecord, error) {
	var content string
	err := db.pool.QueryRow(ctx,
		`SELECT content::text FROM persona_snapshots WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}

	record := types.NewPersonaRecord()
	if err := json.Unmarshal([]byte(content), record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal persona: %w", err)
	}
	return record, nil
}
