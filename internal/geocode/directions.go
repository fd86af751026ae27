package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

const googleDirectionsEndpoint = "https://maps.googleapis.com/maps/api/directions/json"

// DirectionsBackend разрешает пересечения через маршрутный API: маршрут из
// строки пересечения в неё же даёт стартовую точку ноги маршрута — это и есть
// координата пересечения. Дополнительно умеет отдавать геометрию пути между
// двумя точками (PathResolver) для полигонов уличных участков.
type DirectionsBackend struct {
	httpClient *http.Client
	apiKey     string
	country    string
	endpoint   string // подменяется в тестах
}

// NewDirectionsBackend создаёт маршрутный бэкенд.
func NewDirectionsBackend(client *http.Client, apiKey, country string) *DirectionsBackend {
	return &DirectionsBackend{
		httpClient: client,
		apiKey:     apiKey,
		country:    country,
		endpoint:   googleDirectionsEndpoint,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			StartAddress  string `json:"start_address"`
			StartLocation struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"start_location"`
		} `json:"legs"`
	} `json:"routes"`
}

func (d *DirectionsBackend) call(ctx context.Context, origin, destination string) (*directionsResponse, error) {
	const op = "geocode/directions/call"

	reqURL, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := reqURL.Query()
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", d.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: directions api returned status %d", op, resp.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return &body, nil
}

// Resolve разрешает строку пересечения маршрутом "в себя".
func (d *DirectionsBackend) Resolve(ctx context.Context, text string) (*models.Address, error) {
	const op = "geocode/directions/Resolve"

	query := withLocality(text, d.country)

	body, err := d.call(ctx, query, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, nil
	default:
		return nil, fmt.Errorf("%s: directions api status %q", op, body.Status)
	}

	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return nil, nil
	}

	leg := body.Routes[0].Legs[0]

	return &models.Address{
		OriginalText:     text,
		FormattedAddress: leg.StartAddress,
		Coordinates: models.LatLng{
			Lat: leg.StartLocation.Lat,
			Lng: leg.StartLocation.Lng,
		},
	}, nil
}

// Path возвращает полилинию маршрута между двумя точками.
func (d *DirectionsBackend) Path(ctx context.Context, from, to models.LatLng) ([]models.LatLng, error) {
	const op = "geocode/directions/Path"

	origin := fmt.Sprintf("%f,%f", from.Lat, from.Lng)
	destination := fmt.Sprintf("%f,%f", to.Lat, to.Lng)

	body, err := d.call(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if body.Status != "OK" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("%s: no route (status %q)", op, body.Status)
	}

	path, err := decodePolyline(body.Routes[0].OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return path, nil
}

// decodePolyline разбирает encoded polyline format (Google).
func decodePolyline(encoded string) ([]models.LatLng, error) {
	const op = "geocode/directions/decodePolyline"

	var path []models.LatLng
	var lat, lng int64

	i := 0
	readValue := func() (int64, error) {
		var result int64
		var shift uint

		for {
			if i >= len(encoded) {
				return 0, fmt.Errorf("%s: truncated polyline", op)
			}

			b := int64(encoded[i]) - 63
			i++

			result |= (b & 0x1f) << shift
			shift += 5

			if b < 0x20 {
				break
			}
		}

		if result&1 != 0 {
			return ^(result >> 1), nil
		}

		return result >> 1, nil
	}

	for i < len(encoded) {
		dLat, err := readValue()
		if err != nil {
			return nil, err
		}

		dLng, err := readValue()
		if err != nil {
			return nil, err
		}

		lat += dLat
		lng += dLng

		path = append(path, models.LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return path, nil
}
