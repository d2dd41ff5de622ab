package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
)

// CreateCardRequest defines the payload for creating a single card.
type CreateCardRequest struct {
	Question string     `json:"question" validate:"required,max=10000"`
	Answer   string     `json:"answer"   validate:"required,max=10000"`
	DeckID   *uuid.UUID `json:"deck_id,omitempty"`
}

// CreateDeckRequest defines the payload for creating a deck.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// SubmitReviewRequest defines the payload for reviewing a card.
// A blank answer is accepted and scored like any other.
type SubmitReviewRequest struct {
	Answer string `json:"answer" validate:"max=10000"`
}

// CardResponse is the public representation of a card.
type CardResponse struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"user_id"`
	DeckID       *uuid.UUID         `json:"deck_id,omitempty"`
	Question     string             `json:"question"`
	Answer       string             `json:"answer"`
	HasEmbedding bool               `json:"has_embedding"`
	MemoryState  domain.MemoryState `json:"fsrs_state"`
	NextReviewAt *time.Time         `json:"next_review_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// CardListResponse wraps a card listing.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
}

// DeckResponse is the public representation of a deck.
type DeckResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeckListResponse wraps a deck listing.
type DeckListResponse struct {
	Decks []DeckResponse `json:"decks"`
}

// UserStatsResponse is the public representation of a user's statistics.
type UserStatsResponse struct {
	TotalReviews       int        `json:"total_reviews"`
	CorrectReviews     int        `json:"correct_reviews"`
	AccuracyPercentage float64    `json:"accuracy_percentage"`
	DaysStudied        int        `json:"days_studied"`
	LastActiveDate     *time.Time `json:"last_active_date,omitempty"`
}

// DeckStatsResponse is the public representation of a deck's statistics.
type DeckStatsResponse struct {
	DeckID             uuid.UUID  `json:"deck_id"`
	TotalCards         int        `json:"total_cards"`
	TotalReviews       int        `json:"total_reviews"`
	CorrectReviews     int        `json:"correct_reviews"`
	AccuracyPercentage float64    `json:"accuracy_percentage"`
	DaysStudied        int        `json:"days_studied"`
	LastActiveDate     *time.Time `json:"last_active_date,omitempty"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID,
		UserID:       card.UserID,
		DeckID:       card.DeckID,
		Question:     card.Question,
		Answer:       card.Answer,
		HasEmbedding: card.HasEmbedding(),
		MemoryState:  card.MemoryState,
		NextReviewAt: card.MemoryState.DueAt(),
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) CardListResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return CardListResponse{Cards: out}
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        deck.ID,
		Name:      deck.Name,
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
}

func userStatsToResponse(s *domain.UserStats) UserStatsResponse {
	return UserStatsResponse{
		TotalReviews:       s.TotalReviews,
		CorrectReviews:     s.CorrectReviews,
		AccuracyPercentage: s.AccuracyPercentage(),
		DaysStudied:        s.DaysStudied,
		LastActiveDate:     s.LastActiveDate,
	}
}

func deckStatsToResponse(s *domain.DeckStats) DeckStatsResponse {
	return DeckStatsResponse{
		DeckID:             s.DeckID,
		TotalCards:         s.TotalCards,
		TotalReviews:       s.TotalReviews,
		CorrectReviews:     s.CorrectReviews,
		AccuracyPercentage: s.AccuracyPercentage(),
		DaysStudied:        s.DaysStudied,
		LastActiveDate:     s.LastActiveDate,
	}
}
