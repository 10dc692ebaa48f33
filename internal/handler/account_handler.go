// Package handler provides the HTTP surface for Emblem.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/service"
)

// AccountHandler handles registration, login, and profile requests.
type AccountHandler struct {
	accountService *service.AccountService
	profileService *service.ProfileService
	certService    *service.CertificationService
	logger         zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accountService *service.AccountService,
	profileService *service.ProfileService,
	certService *service.CertificationService,
	logger zerolog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		profileService: profileService,
		certService:    certService,
		logger:         logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/users/{id}/profile", h.handleGetProfile)
	r.Put("/users/{id}/profile", h.handleUpdateProfile)
	r.Get("/users/{id}/certifications", h.handleGetCertifications)
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

func (h *AccountHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	output, err := h.accountService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "user registered",
		UserID:  output.UserID,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

func (h *AccountHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	userID, err := h.accountService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "login successful",
		UserID:  userID,
	})
}

func (h *AccountHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// updateProfileRequest distinguishes absent fields from empty strings:
// a field left out of the JSON decodes to nil and is not touched, while
// an explicit "" is a valid value that clears the field.
type updateProfileRequest struct {
	FullName   *string `json:"full_name"`
	ProfileBio *string `json:"profile_bio"`
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := h.accountService.UpdateProfile(r.Context(), userID, domain.ProfilePatch{
		FullName:   req.FullName,
		ProfileBio: req.ProfileBio,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.profileService.Invalidate(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

func (h *AccountHandler) handleGetCertifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	progress, err := h.certService.ListProgressByUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if progress == nil {
		progress = []*domain.CertProgress{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"certifications": progress})
}

// parseIDParam extracts a positive integer URL parameter, writing a
// 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
