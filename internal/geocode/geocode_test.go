package geocode

// Тесты роутера геокодирования (internal/geocode).
//
// Проверяем:
//  - дедупликацию пар (street, cross) до диспетчеризации;
//  - политику отказов: промах логируется и опускается, батч продолжается;
//  - нормализацию запросов (суффикс населённого пункта, формат пересечений);
//  - бэкенды против httptest-серверов, включая кириллический ввод;
//  - разбор encoded polyline.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// fakeBackend — управляемый бэкенд для тестов роутера.
type fakeBackend struct {
	calls   int32
	resolve func(text string) (*models.Address, error)
}

func (f *fakeBackend) Resolve(_ context.Context, text string) (*models.Address, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.resolve(text)
}

func TestRouter_ResolveStreetEndpoints_Dedup(t *testing.T) {
	fb := &fakeBackend{resolve: func(text string) (*models.Address, error) {
		return &models.Address{
			OriginalText: text,
			Coordinates:  models.LatLng{Lat: 42.69, Lng: 23.32},
		}, nil
	}}

	router := NewRouter(fb, 0)

	sections := []models.StreetSection{
		{Street: "ул. Оборище", From: "ул. Кракра", To: "бул. Евлоги Георгиев"},
		// та же пара From — не должна породить второй вызов
		{Street: "ул. Оборище", From: "ул. Кракра", To: "ул. Шипка"},
	}

	out := router.ResolveStreetEndpoints(context.Background(), "София", sections)

	// уникальные пары: (Оборище, Кракра), (Оборище, Евлоги), (Оборище, Шипка)
	require.Equal(t, int32(3), atomic.LoadInt32(&fb.calls))
	require.Len(t, out, 3)
	require.Contains(t, out, EndpointKey("ул. Оборище", "ул. Кракра"))
}

func TestRouter_ResolveStreetEndpoints_MissOmitted(t *testing.T) {
	fb := &fakeBackend{resolve: func(text string) (*models.Address, error) {
		if text == IntersectionQuery("ул. Оборище", "ул. Кракра", "София") {
			return nil, errors.New("quota exceeded")
		}
		return &models.Address{Coordinates: models.LatLng{Lat: 1, Lng: 2}}, nil
	}}

	router := NewRouter(fb, 0)

	sections := []models.StreetSection{
		{Street: "ул. Оборище", From: "ул. Кракра", To: "ул. Шипка"},
	}

	out := router.ResolveStreetEndpoints(context.Background(), "София", sections)

	// промах опущен, второй конец разрешён — батч не прерван
	require.Len(t, out, 1)
	require.NotContains(t, out, EndpointKey("ул. Оборище", "ул. Кракра"))
	require.Contains(t, out, EndpointKey("ул. Оборище", "ул. Шипка"))
}

func TestRouter_ResolveAddresses(t *testing.T) {
	fb := &fakeBackend{resolve: func(text string) (*models.Address, error) {
		switch text {
		case "провал":
			return nil, errors.New("boom")
		case "пусто":
			return nil, nil
		default:
			return &models.Address{OriginalText: text, Coordinates: models.LatLng{Lat: 42, Lng: 23}}, nil
		}
	}}

	router := NewRouter(fb, 0)

	out := router.ResolveAddresses(context.Background(), []string{"ул. Раковски 100", "провал", "пусто", "бул. Витоша 1"})
	require.Len(t, out, 2)
	require.Equal(t, "ул. Раковски 100", out[0].OriginalText)
	require.Equal(t, "бул. Витоша 1", out[1].OriginalText)
}

func TestIntersectionQuery(t *testing.T) {
	got := IntersectionQuery("ул. Оборище", "ул. Кракра", "София")
	require.Equal(t, "ул. Оборище, София & ул. Кракра, София", got)

	// суффикс не дублируется
	got = IntersectionQuery("ул. Оборище, София", "ул. Кракра", "София")
	require.Equal(t, "ул. Оборище, София & ул. Кракра, София", got)
}

func TestWithLocality(t *testing.T) {
	require.Equal(t, "ул. Шипка 5, София", withLocality("ул. Шипка 5", "София"))
	require.Equal(t, "ул. Шипка 5, София", withLocality("ул. Шипка 5, София", "София"))
	require.Equal(t, "ул. Шипка 5", withLocality("ул. Шипка 5", ""))
}

func TestGoogleBackend_Resolve(t *testing.T) {
	var gotAddress string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		fmt.Fprint(w, `{"status":"OK","results":[{
			"formatted_address":"ul. Rakovski 100, Sofia, Bulgaria",
			"geometry":{"location":{"lat":42.6936,"lng":23.3516}}}]}`)
	}))
	defer srv.Close()

	backend := NewGoogleBackend(srv.Client(), "key", "България")
	backend.endpoint = srv.URL

	addr, err := backend.Resolve(context.Background(), "ул. Раковски 100, София")
	require.NoError(t, err)
	require.NotNil(t, addr)
	require.Equal(t, "ул. Раковски 100, София", addr.OriginalText)
	require.Equal(t, "ul. Rakovski 100, Sofia, Bulgaria", addr.FormattedAddress)
	require.Equal(t, models.LatLng{Lat: 42.6936, Lng: 23.3516}, addr.Coordinates)

	// кириллица дошла до провайдера без порчи, с дизамбигуатором страны
	require.Equal(t, "ул. Раковски 100, София, България", gotAddress)
}

func TestGoogleBackend_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	backend := NewGoogleBackend(srv.Client(), "key", "")
	backend.endpoint = srv.URL

	addr, err := backend.Resolve(context.Background(), "несъществуващ адрес")
	require.NoError(t, err)
	require.Nil(t, addr)
}

func TestGoogleBackend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT"}`)
	}))
	defer srv.Close()

	backend := NewGoogleBackend(srv.Client(), "key", "")
	backend.endpoint = srv.URL

	_, err := backend.Resolve(context.Background(), "адрес")
	require.Error(t, err)
}

func TestDirectionsBackend_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// маршрут "в себя": origin == destination
		require.Equal(t, r.URL.Query().Get("origin"), r.URL.Query().Get("destination"))
		fmt.Fprint(w, `{"status":"OK","routes":[{
			"overview_polyline":{"points":""},
			"legs":[{"start_address":"ul. Oborishte & ul. Krakra, Sofia",
				"start_location":{"lat":42.6936,"lng":23.3516}}]}]}`)
	}))
	defer srv.Close()

	backend := NewDirectionsBackend(srv.Client(), "key", "България")
	backend.endpoint = srv.URL

	addr, err := backend.Resolve(context.Background(), "ул. Оборище, София & ул. Кракра, София")
	require.NoError(t, err)
	require.NotNil(t, addr)
	require.Equal(t, models.LatLng{Lat: 42.6936, Lng: 23.3516}, addr.Coordinates)
}

func TestTilesBackend_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[{"place_name":"ulitsa Shipka 5, Sofia","center":[23.3411,42.6950]}]}`)
	}))
	defer srv.Close()

	backend := NewTilesBackend(srv.Client(), "token", "")
	backend.endpoint = srv.URL

	addr, err := backend.Resolve(context.Background(), "ул. Шипка 5")
	require.NoError(t, err)
	require.NotNil(t, addr)
	// center приходит как [lng, lat]
	require.Equal(t, models.LatLng{Lat: 42.6950, Lng: 23.3411}, addr.Coordinates)
}

func TestDecodePolyline(t *testing.T) {
	// канонический пример из документации формата
	path, err := decodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, path, 3)
	require.InDelta(t, 38.5, path[0].Lat, 1e-9)
	require.InDelta(t, -120.2, path[0].Lng, 1e-9)
	require.InDelta(t, 43.252, path[2].Lat, 1e-9)
	require.InDelta(t, -126.453, path[2].Lng, 1e-9)

	// мусор -> ошибка, не фантомные точки
	_, err = decodePolyline("_p~iF")
	require.Error(t, err)
}
