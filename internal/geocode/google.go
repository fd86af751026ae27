package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

const googleGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleBackend — традиционный одноадресный геокодер (Google Geocoding API).
type GoogleBackend struct {
	httpClient *http.Client
	apiKey     string
	country    string
	endpoint   string // подменяется в тестах
}

// NewGoogleBackend создаёт бэкенд Google Geocoding.
func NewGoogleBackend(client *http.Client, apiKey, country string) *GoogleBackend {
	return &GoogleBackend{
		httpClient: client,
		apiKey:     apiKey,
		country:    country,
		endpoint:   googleGeocodeEndpoint,
	}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve разрешает адрес; страна-дизамбигуатор добавляется к запросам без неё.
// Кириллица уходит как есть (URL-кодирование делает net/url).
func (g *GoogleBackend) Resolve(ctx context.Context, text string) (*models.Address, error) {
	const op = "geocode/google/Resolve"

	query := withLocality(text, g.country)

	reqURL, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := reqURL.Query()
	q.Set("address", query)
	q.Set("key", g.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: geocode api returned status %d", op, resp.StatusCode)
	}

	var body googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("%s: geocode api status %q", op, body.Status)
	}

	if len(body.Results) == 0 {
		return nil, nil
	}

	res := body.Results[0]

	return &models.Address{
		OriginalText:     text,
		FormattedAddress: strings.TrimSpace(res.FormattedAddress),
		Coordinates: models.LatLng{
			Lat: res.Geometry.Location.Lat,
			Lng: res.Geometry.Location.Lng,
		},
	}, nil
}
