package domain

import (
	"errors"
	"time"
)

// LifecycleState is the position of a card in the learning lifecycle.
type LifecycleState string

// Possible lifecycle values
const (
	LifecycleNew        LifecycleState = "new"
	LifecycleLearning   LifecycleState = "learning"
	LifecycleReview     LifecycleState = "review"
	LifecycleRelearning LifecycleState = "relearning"
)

// Difficulty bounds for a reviewed card.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Common validation errors for MemoryState
var (
	ErrNegativeStability       = errors.New("stability cannot be negative")
	ErrDifficultyOutOfRange    = errors.New("difficulty must be between 1 and 10 once reviewed")
	ErrNegativeCounter         = errors.New("repetitions, lapses and elapsed days cannot be negative")
	ErrInvalidLifecycleState   = errors.New("invalid lifecycle state")
	ErrNewStateWithRepetitions = errors.New("a card with repetitions cannot be in the new state")
	ErrReviewedStateWithoutRep = errors.New("a card without repetitions must be in the new state")
)

// MemoryState is the FSRS memory model for a single card. It is stored as an
// opaque JSON document on the card, so the JSON field names are part of the
// persisted contract.
type MemoryState struct {
	Stability      float64        `json:"stability"`
	Difficulty     float64        `json:"difficulty"`
	ElapsedDays    int            `json:"elapsed_days"`
	ScheduledDays  int            `json:"scheduled_days"`
	Repetitions    int            `json:"reps"`
	Lapses         int            `json:"lapses"`
	State          LifecycleState `json:"state"`
	LastReviewedAt *time.Time     `json:"last_review,omitempty"`
}

// NewMemoryState returns the state of a card that has never been reviewed.
func NewMemoryState() MemoryState {
	return MemoryState{State: LifecycleNew}
}

// Valid reports whether s is a known lifecycle state.
func (s LifecycleState) Valid() bool {
	switch s {
	case LifecycleNew, LifecycleLearning, LifecycleReview, LifecycleRelearning:
		return true
	default:
		return false
	}
}

// Validate checks the structural invariants of the memory state.
func (m MemoryState) Validate() error {
	if !m.State.Valid() {
		return ErrInvalidLifecycleState
	}

	if m.Stability < 0 {
		return ErrNegativeStability
	}

	if m.Repetitions < 0 || m.Lapses < 0 || m.ElapsedDays < 0 || m.ScheduledDays < 0 {
		return ErrNegativeCounter
	}

	if m.Repetitions == 0 && m.State != LifecycleNew {
		return ErrReviewedStateWithoutRep
	}

	if m.Repetitions > 0 {
		if m.State == LifecycleNew {
			return ErrNewStateWithRepetitions
		}
		if m.Difficulty < MinDifficulty || m.Difficulty > MaxDifficulty {
			return ErrDifficultyOutOfRange
		}
	}

	return nil
}

// DueAt returns when the card should next be reviewed. A card that has
// never been reviewed is due immediately.
func (m MemoryState) DueAt() *time.Time {
	if m.LastReviewedAt == nil {
		return nil
	}
	due := m.LastReviewedAt.AddDate(0, 0, m.ScheduledDays)
	return &due
}
