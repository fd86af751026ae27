package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/httperr"
)

type reportRequest struct {
	Title       string         `json:"title"`
	Text        string         `json:"text"`
	Locality    string         `json:"locality"`
	Coordinates *models.LatLng `json:"coordinates,omitempty"`
}

type reportResponse struct {
	ID string `json:"id"`
}

// CreateReport принимает прямой пользовательский репорт и кладёт его в
// очередь инжеста как исходный документ типа user-report. Репорт с
// координатами несёт готовую точечную геометрию и не требует геокодирования.
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeStrict(r, &req); err != nil {
		httperr.WriteError(w, r, invalidArgument("decode body"))
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		httperr.WriteError(w, r, invalidArgument("text"))
		return
	}

	locality := strings.TrimSpace(req.Locality)
	if locality == "" {
		locality = h.opts.DefaultLocality
	}

	now := h.now()
	doc := models.SourceDocument{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		RawText:       req.Text,
		SourceType:    models.SourceTypeUserReport,
		Locality:      locality,
		DatePublished: now,
		CrawledAt:     now,
	}

	if req.Coordinates != nil {
		if !validCoordinates(*req.Coordinates) {
			httperr.WriteError(w, r, invalidArgument("coordinates"))
			return
		}

		feat := geojson.NewFeature(orb.Point{req.Coordinates.Lng, req.Coordinates.Lat})
		raw, err := json.Marshal(feat)
		if err != nil {
			httperr.WriteError(w, r, err)
			return
		}
		doc.PrecomputedGeoJSON = raw
	}

	if err := h.storage.CreateSource(r.Context(), doc); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, reportResponse{ID: doc.ID})
}
