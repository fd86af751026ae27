package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

const tilesGeocodeEndpoint = "https://api.maptiles.example/geocoding/v5"

// TilesBackend — forward-геокодер тайлового картографического провайдера.
// Запрос кодируется в путь, ответ — GeoJSON-подобный список фич с центром
// [lng, lat].
type TilesBackend struct {
	httpClient *http.Client
	apiKey     string
	country    string
	endpoint   string // подменяется в тестах
}

// NewTilesBackend создаёт тайловый бэкенд.
func NewTilesBackend(client *http.Client, apiKey, country string) *TilesBackend {
	return &TilesBackend{
		httpClient: client,
		apiKey:     apiKey,
		country:    country,
		endpoint:   tilesGeocodeEndpoint,
	}
}

type tilesResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Resolve разрешает адрес через тайлового провайдера.
func (t *TilesBackend) Resolve(ctx context.Context, text string) (*models.Address, error) {
	const op = "geocode/tiles/Resolve"

	query := withLocality(text, t.country)

	reqURL, err := url.Parse(t.endpoint + "/" + url.PathEscape(query) + ".json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := reqURL.Query()
	q.Set("access_token", t.apiKey)
	q.Set("limit", "1")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: tiles api returned status %d", op, resp.StatusCode)
	}

	var body tilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if len(body.Features) == 0 {
		return nil, nil
	}

	feat := body.Features[0]
	if len(feat.Center) != 2 {
		return nil, fmt.Errorf("%s: malformed center in response", op)
	}

	return &models.Address{
		OriginalText:     text,
		FormattedAddress: feat.PlaceName,
		Coordinates: models.LatLng{
			Lat: feat.Center[1],
			Lng: feat.Center[0],
		},
	}, nil
}
