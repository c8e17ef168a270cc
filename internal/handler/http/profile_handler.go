package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/profile"
)

type ProfileHandler struct {
	service profile.Service
}

func NewProfileHandler(service profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) RegisterRoutes(router chi.Router) {
	router.Get("/profile", h.handleGetProfile)
	router.Put("/profile", h.handleUpdateProfile)
}

func (h *ProfileHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p := profileFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := profileFromContext(r.Context())

	var upd profile.AddressUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.UpdateAddress(r.Context(), p.ID, upd); err != nil {
		log.Error().Err(err).Msg("failed to update profile")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update profile")
		return
	}

	updated, err := h.service.GetByID(r.Context(), p.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload profile after update")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
