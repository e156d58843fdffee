package domain

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// JobState represents a scrape job state in the state machine.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// ValidateStateTransition checks if a state transition is valid.
// Transitions only move forward; failed -> running is the dispatcher's
// internal retry path and is never reachable through the API.
func ValidateStateTransition(from, to JobState) error {
	validTransitions := map[JobState][]JobState{
		StatePending: {
			StateRunning, // Worker picked the job up
			StateFailed,  // Fatal before execution (unknown platform)
		},
		StateRunning: {
			StateCompleted, // Successful scrape
			StateFailed,    // Execution error, no retries left
		},
		StateFailed: {
			StateRunning, // Dispatcher retry, bounded
		},
		StateCompleted: {},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}

// IsTerminalState checks if a state is terminal.
func IsTerminalState(state JobState) bool {
	return state == StateCompleted || state == StateFailed
}

// Job is one platform-scoped unit of search work with its own lifecycle.
// State is mutated only by the job's own execution path.
type Job struct {
	ID          string `db:"id"           json:"id"`
	Fingerprint string `db:"fingerprint"  json:"fingerprint"`
	SearchQuery string `db:"search_query" json:"search_query"`

	PlatformID   int64  `db:"platform_id"   json:"platform_id"`
	PlatformName string `db:"platform_name" json:"platform"`

	Status       JobState `db:"status"        json:"status"`
	ResultsCount int      `db:"results_count" json:"results_count"`
	ErrorMessage string   `db:"error_message" json:"error_message,omitempty"`

	// ProductIDs are the products this job's consolidated listings resolved
	// to. Written on completion; the status tracker assembles the group's
	// result payload from them.
	ProductIDs pq.Int64Array `db:"product_ids" json:"product_ids,omitempty"`

	MaxResults int `db:"max_results" json:"max_results"`

	StartedAt   *time.Time `db:"started_at"   json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

// GroupRun is the set of jobs created by a single dispatch.
// Membership is immutable after creation.
type GroupRun struct {
	ID          string    `json:"group_id"`
	Fingerprint string    `json:"fingerprint"`
	Query       string    `json:"query"`
	Platforms   []string  `json:"platforms"`
	JobIDs      []string  `json:"job_ids"`
	StartedAt   time.Time `json:"started_at"`
}
