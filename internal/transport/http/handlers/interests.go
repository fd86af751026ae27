package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/httperr"
)

type interestRequest struct {
	UserID      string        `json:"userId"`
	Coordinates models.LatLng `json:"coordinates"`
	Radius      float64       `json:"radius"`
}

func (h *Handlers) CreateInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if err := decodeStrict(r, &req); err != nil {
		httperr.WriteError(w, r, invalidArgument("decode body"))
		return
	}

	if _, err := uuid.Parse(req.UserID); err != nil {
		httperr.WriteError(w, r, invalidArgument("user id"))
		return
	}

	if !validCoordinates(req.Coordinates) {
		httperr.WriteError(w, r, invalidArgument("coordinates"))
		return
	}

	now := h.now()
	interest := models.Interest{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Coordinates: req.Coordinates,
		Radius:      models.ClampRadius(req.Radius),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.storage.CreateInterest(r.Context(), interest); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, interest)
}

func (h *Handlers) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		httperr.WriteError(w, r, invalidArgument("user id"))
		return
	}

	interests, err := h.storage.InterestsByUser(r.Context(), userID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if interests == nil {
		interests = []models.Interest{}
	}

	writeJSON(w, http.StatusOK, interests)
}

func (h *Handlers) UpdateInterest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httperr.WriteError(w, r, invalidArgument("interest id"))
		return
	}

	var req interestRequest
	if err := decodeStrict(r, &req); err != nil {
		httperr.WriteError(w, r, invalidArgument("decode body"))
		return
	}

	if !validCoordinates(req.Coordinates) {
		httperr.WriteError(w, r, invalidArgument("coordinates"))
		return
	}

	interest, err := h.storage.InterestByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	interest.Coordinates = req.Coordinates
	interest.Radius = models.ClampRadius(req.Radius)
	interest.UpdatedAt = h.now()

	if err := h.storage.UpdateInterest(r.Context(), *interest); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, interest)
}

func (h *Handlers) DeleteInterest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httperr.WriteError(w, r, invalidArgument("interest id"))
		return
	}

	if err := h.storage.DeleteInterest(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
