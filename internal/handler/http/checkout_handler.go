package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/checkout"
)

type CheckoutHandler struct {
	service *checkout.Service
}

func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handleSubmit)
}

func (h *CheckoutHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var input checkout.Input

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.service.Submit(r.Context(), profileFromContext(r.Context()), input)
	if err != nil {
		if errors.Is(err, checkout.ErrCheckoutInFlight) {
			respondWithError(w, http.StatusConflict, "A checkout is already in progress")
			return
		}
		log.Error().Err(err).Msg("checkout submit failed")
		if result != nil {
			respondWithJSON(w, http.StatusInternalServerError, result)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to process checkout")
		return
	}

	switch result.State {
	case checkout.StateSucceeded:
		respondWithJSON(w, http.StatusCreated, result)
	case checkout.StateValidating:
		respondWithJSON(w, http.StatusUnprocessableEntity, result)
	default:
		respondWithJSON(w, http.StatusBadRequest, result)
	}
}
