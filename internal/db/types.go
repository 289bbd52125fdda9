package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a persona pipeline run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Persona snapshot stages
const (
	StageMerged = "merged"
	StageRanked = "ranked"
)

// StoredExtraction is one persisted extraction record
type StoredExtraction struct {
	Position          int    `json:"position"`
	Question          string `json:"question"`
	Response          string `json:"response"`
	ProcessedResponse string `json:"processed_response"`
	Malformed         bool   `json:"malformed"`
}
