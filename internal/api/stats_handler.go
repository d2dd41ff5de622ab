package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service/statistics"
)

// StatsHandler serves user and deck statistics.
type StatsHandler struct {
	stats  statistics.Service
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats statistics.Service, logger *slog.Logger) *StatsHandler {
	if stats == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stats cannot be nil for StatsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{
		stats:  stats,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// GetUserStats handles GET /api/stats.
func (h *StatsHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.stats.GetUserStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userStatsToResponse(stats))
}

// GetDeckStats handles GET /api/decks/{id}/stats.
func (h *StatsHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	stats, err := h.stats.GetDeckStats(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckStatsToResponse(stats))
}
