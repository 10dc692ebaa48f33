package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/service"
)

// BadgeHandler handles badge catalog and achievement share requests.
type BadgeHandler struct {
	badgeService *service.BadgeService
	logger       zerolog.Logger
}

// NewBadgeHandler creates a new BadgeHandler.
func NewBadgeHandler(badgeService *service.BadgeService, logger zerolog.Logger) *BadgeHandler {
	return &BadgeHandler{
		badgeService: badgeService,
		logger:       logger.With().Str("handler", "badge").Logger(),
	}
}

// RegisterRoutes registers badge routes.
func (h *BadgeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/badges", h.handleListBadges)
	r.Get("/badges/{id}", h.handleGetBadge)
	r.Get("/achievements/{token}", h.handleGetSharedAchievement)
}

func (h *BadgeHandler) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badgeService.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if badges == nil {
		badges = []*domain.Badge{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"badges": badges})
}

func (h *BadgeHandler) handleGetBadge(w http.ResponseWriter, r *http.Request) {
	badgeID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	badge, err := h.badgeService.Get(r.Context(), badgeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, badge)
}

func (h *BadgeHandler) handleGetSharedAchievement(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		writeBadRequest(w, "invalid token parameter")
		return
	}

	earned, err := h.badgeService.GetShared(r.Context(), token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, earned)
}
