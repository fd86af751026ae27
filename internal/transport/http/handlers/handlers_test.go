package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
	"github.com/velinovaa/go-alerts-aggregator/mocks"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestRouter(st storage.Storage) (*chi.Mux, *Handlers) {
	h := New(st, Options{
		DefaultLimit:    50,
		MaxLimit:        500,
		RelevanceWindow: 7 * 24 * time.Hour,
		Location:        time.UTC,
		DefaultLocality: "София",
	})
	h.now = func() time.Time { return testNow }

	r := chi.NewRouter()
	r.Post("/interests", h.CreateInterest)
	r.Get("/interests", h.ListInterests)
	r.Put("/interests/{id}", h.UpdateInterest)
	r.Delete("/interests/{id}", h.DeleteInterest)
	r.Get("/messages", h.ListMessages)
	r.Get("/messages/{id}", h.GetMessage)
	r.Post("/reports", h.CreateReport)

	return r, h
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateInterest_ClampsRadius(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	var created models.Interest
	st.EXPECT().CreateInterest(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, interest models.Interest) error {
			created = interest
			return nil
		})

	r, _ := newTestRouter(st)

	userID := uuid.NewString()
	rr := doJSON(t, r, http.MethodPost, "/interests", map[string]any{
		"userId":      userID,
		"coordinates": map[string]float64{"lat": 42.6977, "lng": 23.3219},
		"radius":      5000,
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, float64(models.InterestRadiusMax), created.Radius)
	require.Equal(t, userID, created.UserID)
	require.NotEmpty(t, created.ID)
	require.Equal(t, testNow, created.CreatedAt)
}

func TestCreateInterest_DefaultRadius(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	var created models.Interest
	st.EXPECT().CreateInterest(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, interest models.Interest) error {
			created = interest
			return nil
		})

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodPost, "/interests", map[string]any{
		"userId":      uuid.NewString(),
		"coordinates": map[string]float64{"lat": 42.6977, "lng": 23.3219},
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, float64(models.InterestRadiusDefault), created.Radius)
}

func TestCreateInterest_RejectsBadInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	r, _ := newTestRouter(st)

	// не-UUID владелец
	rr := doJSON(t, r, http.MethodPost, "/interests", map[string]any{
		"userId":      "not-a-uuid",
		"coordinates": map[string]float64{"lat": 42.0, "lng": 23.0},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// координаты вне диапазона
	rr = doJSON(t, r, http.MethodPost, "/interests", map[string]any{
		"userId":      uuid.NewString(),
		"coordinates": map[string]float64{"lat": 142.0, "lng": 23.0},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// неизвестное поле
	rr = doJSON(t, r, http.MethodPost, "/interests", map[string]any{
		"userId":  uuid.NewString(),
		"unknown": true,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateInterest_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	id := uuid.NewString()
	st.EXPECT().InterestByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodPut, "/interests/"+id, map[string]any{
		"coordinates": map[string]float64{"lat": 42.0, "lng": 23.0},
		"radius":      300,
	})

	require.Equal(t, http.StatusNotFound, rr.Code)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "not_found", env.Error.Code)
}

func TestDeleteInterest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	id := uuid.NewString()
	st.EXPECT().DeleteInterest(gomock.Any(), id).Return(nil)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodDelete, "/interests/"+id, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestListInterests_EmptyIsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	userID := uuid.NewString()
	st.EXPECT().InterestsByUser(gomock.Any(), userID).Return(nil, nil)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodGet, "/interests?user_id="+userID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, "[]", rr.Body.String())
}

func TestListMessages_CurrentFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	fresh := testNow.Add(-24 * time.Hour)
	stale := testNow.Add(-30 * 24 * time.Hour)

	msgs := []models.Message{
		{ID: "fresh123", FinalizedAt: fresh},
		{ID: "stale123", FinalizedAt: stale},
	}

	// фильтр актуальности читает с запасом до MaxLimit
	st.EXPECT().ListMessages(gomock.Any(), models.ListOptions{Limit: 500, OnlyCurrent: true}).Return(msgs, nil)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodGet, "/messages?current=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "fresh123", got[0].ID)
}

func TestListMessages_CurrentPageFills(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	// три устаревших впереди двух актуальных: страница limit=2 всё равно
	// заполняется, устаревшие не съедают лимит
	stale := testNow.Add(-30 * 24 * time.Hour)
	fresh := testNow.Add(-24 * time.Hour)

	msgs := []models.Message{
		{ID: "stale001", FinalizedAt: stale},
		{ID: "stale002", FinalizedAt: stale},
		{ID: "stale003", FinalizedAt: stale},
		{ID: "fresh001", FinalizedAt: fresh},
		{ID: "fresh002", FinalizedAt: fresh},
	}

	st.EXPECT().ListMessages(gomock.Any(), models.ListOptions{Limit: 500, OnlyCurrent: true}).Return(msgs, nil)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodGet, "/messages?current=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "fresh001", got[0].ID)
	require.Equal(t, "fresh002", got[1].ID)
}

func TestListMessages_LimitClamped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().ListMessages(gomock.Any(), models.ListOptions{Limit: 500}).Return(nil, nil)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodGet, "/messages?limit=9999", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestGetMessage_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().MessageByID(gomock.Any(), "zzzzzzzz").Return(nil, storage.ErrNotFound)

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodGet, "/messages/zzzzzzzz", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	var created models.SourceDocument
	st.EXPECT().CreateSource(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, doc models.SourceDocument) error {
			created = doc
			return nil
		})

	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodPost, "/reports", map[string]any{
		"title":       "Спукана тръба",
		"text":        "Тече вода на кръстовището",
		"coordinates": map[string]float64{"lat": 42.6977, "lng": 23.3219},
	})

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, models.SourceTypeUserReport, created.SourceType)
	require.Equal(t, "София", created.Locality)
	require.Equal(t, testNow, created.CrawledAt)
	require.NotEmpty(t, created.PrecomputedGeoJSON)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, created.ID, resp.ID)
}

func TestCreateReport_RequiresText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)
	r, _ := newTestRouter(st)

	rr := doJSON(t, r, http.MethodPost, "/reports", map[string]any{"text": "   "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
