package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/importer"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service"
	"github.com/phrazzld/scry-review/internal/service/card_review"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cardService       service.CardService
	cardReviewService card_review.CardReviewService
	logger            *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cardService service.CardService,
	cardReviewService card_review.CardReviewService,
	logger *slog.Logger,
) *CardHandler {
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardService cannot be nil for CardHandler")
	}
	if cardReviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardReviewService cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		cardService:       cardService,
		cardReviewService: cardReviewService,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), userID, req.DeckID, req.Question, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	log.Debug("card created", slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// ListCards handles GET /api/cards. Optional query parameters: deck_id,
// due (only cards due now) and limit.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	deckID, err := getOptionalQueryUUID(r, "deck_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.listCards(w, r, userID, deckID)
}

// ListDeckCards handles GET /api/decks/{id}/cards with the same due and
// limit parameters as ListCards.
func (h *CardHandler) ListDeckCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	h.listCards(w, r, userID, &deckID)
}

func (h *CardHandler) listCards(w http.ResponseWriter, r *http.Request, userID uuid.UUID, deckID *uuid.UUID) {
	due, err := getOptionalQueryBool(r, "due")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := getOptionalQueryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.cardService.ListCards(r.Context(), userID, service.ListCardsOptions{
		DeckID:  deckID,
		DueOnly: due,
		Limit:   limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitReview handles POST /api/cards/{id}/review.
// It grades the free-text answer and returns the card's new schedule.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.cardReviewService.SubmitReview(r.Context(), userID, cardID, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("card_id", cardID.String()),
		slog.Int("grade", int(result.Grade)),
		slog.String("validation_method", string(result.Method)))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ImportTSV handles POST /api/cards/import/tsv. The body is the raw file;
// an optional deck_id query parameter places the cards in a deck.
func (h *CardHandler) ImportTSV(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	deckID, err := getOptionalQueryUUID(r, "deck_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.cardService.ImportTSV(r.Context(), userID, deckID, r.Body)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ImportAnki handles POST /api/cards/import/anki. The body is the raw .apkg file.
func (h *CardHandler) ImportAnki(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, importer.MaxFileBytes+1))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read upload")
		return
	}

	result, err := h.cardService.ImportAnki(r.Context(), userID, data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import Anki package")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
