package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CorrectScoreThreshold is the minimum validation score counted as a correct
// review in aggregate statistics.
const CorrectScoreThreshold = 0.7

// Common validation errors for aggregate statistics
var (
	ErrEmptyStatsUserID = errors.New("stats user ID cannot be empty")
	ErrEmptyStatsDeckID = errors.New("stats deck ID cannot be empty")
)

// UserStats holds precomputed review counters for a user. Counters only ever
// grow; they are never recomputed from the review log.
type UserStats struct {
	UserID         uuid.UUID  `json:"user_id"`
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	DaysStudied    int        `json:"days_studied"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeckStats holds precomputed review counters and the card count for a deck.
type DeckStats struct {
	DeckID         uuid.UUID  `json:"deck_id"`
	UserID         uuid.UUID  `json:"user_id"`
	TotalCards     int        `json:"total_cards"`
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	DaysStudied    int        `json:"days_studied"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsCorrect reports whether a validation score counts as a correct review.
func IsCorrect(score float64) bool {
	return score >= CorrectScoreThreshold
}

// StudyDate truncates t to its UTC calendar day.
func StudyDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AccuracyPercentage returns correct reviews as a percentage of all reviews.
func (s *UserStats) AccuracyPercentage() float64 {
	return accuracy(s.CorrectReviews, s.TotalReviews)
}

// Validate checks if the UserStats has valid data.
func (s *UserStats) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStatsUserID
	}
	return nil
}

// AccuracyPercentage returns correct reviews as a percentage of all reviews.
func (s *DeckStats) AccuracyPercentage() float64 {
	return accuracy(s.CorrectReviews, s.TotalReviews)
}

// Validate checks if the DeckStats has valid data.
func (s *DeckStats) Validate() error {
	if s.DeckID == uuid.Nil {
		return ErrEmptyStatsDeckID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyStatsUserID
	}
	return nil
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
