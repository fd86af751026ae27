package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/timespan"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/httperr"
)

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := h.opts.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			httperr.WriteError(w, r, invalidArgument("limit"))
			return
		}

		limit = n
		if limit > h.opts.MaxLimit {
			limit = h.opts.MaxLimit
		}
	}

	onlyCurrent := r.URL.Query().Get("current") == "1"

	// фильтр актуальности отбрасывает часть выборки, поэтому читаем с
	// запасом до MaxLimit; актуальные записи глубже MaxLimit свежих на
	// страницу не попадут
	fetchLimit := limit
	if onlyCurrent && fetchLimit < h.opts.MaxLimit {
		fetchLimit = h.opts.MaxLimit
	}

	msgs, err := h.storage.ListMessages(r.Context(), models.ListOptions{
		Limit:       fetchLimit,
		OnlyCurrent: onlyCurrent,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	// актуальность оценивается на момент чтения, а не инжеста
	if onlyCurrent {
		now := h.now()
		current := make([]models.Message, 0, len(msgs))
		for i := range msgs {
			if timespan.IsCurrent(&msgs[i], now, h.opts.RelevanceWindow, h.opts.Location) {
				current = append(current, msgs[i])
			}
		}
		if int64(len(current)) > limit {
			current = current[:limit]
		}
		msgs = current
	}

	if msgs == nil {
		msgs = []models.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handlers) GetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httperr.WriteError(w, r, invalidArgument("message id"))
		return
	}

	msg, err := h.storage.MessageByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}
