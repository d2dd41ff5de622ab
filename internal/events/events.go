package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the review engine.
const (
	// CardReviewedEventType is published after a review has been persisted.
	CardReviewedEventType = "card.reviewed"

	// CardCreatedEventType is published after a single card has been created.
	CardCreatedEventType = "card.created"
)

// Event is a domain event passed from publishers to handlers in-process.
// Events are ephemeral: they are never stored or replayed.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type identifies the payload shape, e.g. CardReviewedEventType
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CardReviewedPayload is the payload of a card.reviewed event.
type CardReviewedPayload struct {
	CardID     uuid.UUID  `json:"card_id"`
	UserID     uuid.UUID  `json:"user_id"`
	DeckID     *uuid.UUID `json:"deck_id,omitempty"`
	Score      float64    `json:"score"`
	Grade      int        `json:"grade"`
	ReviewedAt time.Time  `json:"reviewed_at"`
}

// CardCreatedPayload is the payload of a card.created event.
type CardCreatedPayload struct {
	CardID uuid.UUID  `json:"card_id"`
	UserID uuid.UUID  `json:"user_id"`
	DeckID *uuid.UUID `json:"deck_id,omitempty"`
}

// NewCardReviewedEvent wraps p in a card.reviewed event.
func NewCardReviewedEvent(p CardReviewedPayload) (*Event, error) {
	return NewEvent(CardReviewedEventType, p)
}

// NewCardCreatedEvent wraps p in a card.created event.
func NewCardCreatedEvent(p CardCreatedPayload) (*Event, error) {
	return NewEvent(CardCreatedEventType, p)
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent hands the event to all handlers and returns without waiting
	// for them. Handler outcomes are never reported to the publisher.
	EmitEvent(ctx context.Context, event *Event)
}
