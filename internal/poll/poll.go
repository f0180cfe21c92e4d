// Package poll implements the poll widget's display-and-voting rules:
// lifecycle classification, interface selection, result reveal policy,
// vote transitions and post-vote feedback timing.
//
// Everything here is a pure function of its inputs except Sequencer, which
// owns a single cancelable timer. Callers hold state explicitly and pass it in.
package poll

import (
	"fmt"
	"time"
)

// Status is an explicit status flag carried by a poll snapshot
type Status string

const (
	StatusNone       Status = ""
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
	StatusNotStarted Status = "not_started"
)

// Lifecycle is the derived voting availability of a poll
type Lifecycle string

const (
	NotStarted Lifecycle = "not_started"
	Active     Lifecycle = "active"
	Ended      Lifecycle = "ended"
)

// Label returns the badge text shown for the lifecycle state
func (l Lifecycle) Label() string {
	switch l {
	case Active:
		return "Active"
	case Ended:
		return "Ended"
	case NotStarted:
		return "Not Started"
	default:
		return string(l)
	}
}

// Snapshot is a poll as delivered by the data source for one render pass
type Snapshot struct {
	Question       string    `json:"question"`
	Category       string    `json:"category,omitempty"`
	Options        []string  `json:"options"`
	Tally          []int     `json:"tally"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	StatusOverride Status    `json:"status,omitempty"`
}

// ValidationError describes a malformed snapshot or config
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the snapshot's structural invariants
func (s Snapshot) Validate() error {
	if len(s.Options) == 0 {
		return &ValidationError{Field: "options", Message: "poll has no options"}
	}
	if len(s.Tally) != len(s.Options) {
		return &ValidationError{
			Field:   "tally",
			Message: fmt.Sprintf("tally has %d entries for %d options", len(s.Tally), len(s.Options)),
		}
	}

	seen := make(map[string]bool, len(s.Options))
	for _, opt := range s.Options {
		if seen[opt] {
			return &ValidationError{Field: "options", Message: fmt.Sprintf("duplicate option %q", opt)}
		}
		seen[opt] = true
	}

	for i, n := range s.Tally {
		if n < 0 {
			return &ValidationError{Field: "tally", Message: fmt.Sprintf("negative count at option %d", i)}
		}
	}

	if !s.ExpiresAt.After(s.CreatedAt) {
		return &ValidationError{Field: "expires_at", Message: "must be after created_at"}
	}

	switch s.StatusOverride {
	case StatusNone, StatusActive, StatusEnded, StatusNotStarted:
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s.StatusOverride)}
	}
	return nil
}

// Classify derives the lifecycle state of a snapshot at the given instant.
// An explicit "ended" override wins over any timestamp comparison.
func Classify(s Snapshot, now time.Time) Lifecycle {
	if s.StatusOverride == StatusEnded || !now.Before(s.ExpiresAt) {
		return Ended
	}
	if now.Before(s.CreatedAt) {
		return NotStarted
	}
	return Active
}
