package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardQuestionEmpty is returned when a card has no question text.
	ErrCardQuestionEmpty = errors.New("card question cannot be empty")

	// ErrCardAnswerEmpty is returned when a card has no expected answer.
	ErrCardAnswerEmpty = errors.New("card answer cannot be empty")
)

// Card is a single question/answer pair owned by a user, optionally grouped
// into a deck. The card exclusively owns its MemoryState; the scheduler
// produces a new state on every review and the whole card is persisted.
type Card struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	DeckID          *uuid.UUID  `json:"deck_id,omitempty"`
	Question        string      `json:"question"`
	Answer          string      `json:"answer"`
	AnswerEmbedding []float32   `json:"-"`
	MemoryState     MemoryState `json:"fsrs_state"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewCard creates a new Card with a fresh memory state. Question and answer
// are trimmed before validation.
func NewCard(userID uuid.UUID, deckID *uuid.UUID, question, answer string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:          uuid.New(),
		UserID:      userID,
		DeckID:      deckID,
		Question:    strings.TrimSpace(question),
		Answer:      strings.TrimSpace(answer),
		MemoryState: NewMemoryState(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.DeckID != nil && *c.DeckID == uuid.Nil {
		return fmt.Errorf("%w: deck ID cannot be the nil UUID", ErrInvalidID)
	}

	if strings.TrimSpace(c.Question) == "" {
		return ErrCardQuestionEmpty
	}

	if strings.TrimSpace(c.Answer) == "" {
		return ErrCardAnswerEmpty
	}

	return c.MemoryState.Validate()
}

// HasEmbedding reports whether a semantic embedding of the answer is stored.
func (c *Card) HasEmbedding() bool {
	return len(c.AnswerEmbedding) > 0
}

// InDeck reports whether the card belongs to a deck.
func (c *Card) InDeck() bool {
	return c.DeckID != nil
}
