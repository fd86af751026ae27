package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
	"github.com/velinovaa/go-alerts-aggregator/mocks"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type recordingPusher struct {
	mu     sync.Mutex
	pushed []models.NotificationMatch
	err    error
}

func (p *recordingPusher) Push(_ context.Context, match models.NotificationMatch, _ models.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, match)
	return p.err
}

func newTestMatcher(st storage.Storage, pusher Pusher, batchSize int) *Matcher {
	m := NewMatcher(st, pusher, batchSize)
	m.now = func() time.Time { return testNow }
	return m
}

// pointMessage — сообщение с единственной точкой геометрии.
func pointMessage(t *testing.T, id string, at models.LatLng) models.Message {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{at.Lng, at.Lat}))

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	return models.Message{ID: id, Text: "спиране на водата", GeoJSON: raw}
}

// Интерес с радиусом 500 м: центроид в 600 м — мимо, в 400 м — ровно одно
// совпадение.
func TestRun_RadiusBoundary(t *testing.T) {
	// 0.0054° широты ≈ 600 м; 0.0036° ≈ 400 м
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	interest := models.Interest{ID: "int-1", UserID: "user-1", Coordinates: center, Radius: 500}

	far := pointMessage(t, "msg-far00", models.LatLng{Lat: center.Lat + 0.0054, Lng: center.Lng})
	near := pointMessage(t, "msg-near0", models.LatLng{Lat: center.Lat + 0.0036, Lng: center.Lng})

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{far, near}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return([]models.Interest{interest}, nil)

	st.EXPECT().MatchExists(gomock.Any(), near.ID, interest.ID).Return(false, nil)

	var created models.NotificationMatch
	st.EXPECT().CreateMatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, match models.NotificationMatch) error {
			created = match
			return nil
		})
	st.EXPECT().MarkMatchNotified(gomock.Any(), gomock.Any(), testNow).Return(nil)
	st.EXPECT().MarkMessageNotified(gomock.Any(), far.ID, testNow).Return(nil)
	st.EXPECT().MarkMessageNotified(gomock.Any(), near.ID, testNow).Return(nil)

	pusher := &recordingPusher{}
	m := newTestMatcher(st, pusher, 100)

	summary, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Messages)
	require.Equal(t, 1, summary.Matches)
	require.Equal(t, 1, summary.Delivered)

	require.Equal(t, interest.UserID, created.UserID)
	require.Equal(t, near.ID, created.MessageID)
	require.InDelta(t, 400, created.Distance, 20)
	require.Len(t, pusher.pushed, 1)
}

// Существующая пара (message, interest) не порождает повторного уведомления.
func TestRun_IdempotentPair(t *testing.T) {
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	interest := models.Interest{ID: "int-1", UserID: "user-1", Coordinates: center, Radius: 500}
	msg := pointMessage(t, "msg-00001", center)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{msg}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return([]models.Interest{interest}, nil)
	st.EXPECT().MatchExists(gomock.Any(), msg.ID, interest.ID).Return(true, nil)
	st.EXPECT().MarkMessageNotified(gomock.Any(), msg.ID, testNow).Return(nil)

	pusher := &recordingPusher{}
	m := newTestMatcher(st, pusher, 100)

	summary, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	require.Zero(t, summary.Matches)
	require.Empty(t, pusher.pushed)
}

// Гонка двух проходов: CreateMatch наткнулся на занятую пару — не ошибка.
func TestRun_CreateMatchRace(t *testing.T) {
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	interest := models.Interest{ID: "int-1", UserID: "user-1", Coordinates: center, Radius: 500}
	msg := pointMessage(t, "msg-00001", center)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{msg}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return([]models.Interest{interest}, nil)
	st.EXPECT().MatchExists(gomock.Any(), msg.ID, interest.ID).Return(false, nil)
	st.EXPECT().CreateMatch(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)
	st.EXPECT().MarkMessageNotified(gomock.Any(), msg.ID, testNow).Return(nil)

	m := newTestMatcher(st, &recordingPusher{}, 100)

	summary, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	require.Zero(t, summary.Matches)
	require.Zero(t, summary.Errors)
}

// Ошибка доставки фиксируется на совпадении и не блокирует проход.
func TestRun_PushErrorRecorded(t *testing.T) {
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	interest := models.Interest{ID: "int-1", UserID: "user-1", Coordinates: center, Radius: 500}
	msg := pointMessage(t, "msg-00001", center)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{msg}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return([]models.Interest{interest}, nil)
	st.EXPECT().MatchExists(gomock.Any(), msg.ID, interest.ID).Return(false, nil)
	st.EXPECT().CreateMatch(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().SetMatchError(gomock.Any(), gomock.Any(), "push channel down").Return(nil)
	st.EXPECT().MarkMessageNotified(gomock.Any(), msg.ID, testNow).Return(nil)

	pusher := &recordingPusher{err: errors.New("push channel down")}
	m := newTestMatcher(st, pusher, 100)

	summary, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Matches)
	require.Zero(t, summary.Delivered)
	require.Equal(t, 1, summary.Errors)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	interest := models.Interest{ID: "int-1", UserID: "user-1", Coordinates: center, Radius: 500}
	msg := pointMessage(t, "msg-00001", center)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	// только чтения: ни CreateMatch, ни Mark*
	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{msg}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return([]models.Interest{interest}, nil)
	st.EXPECT().MatchExists(gomock.Any(), msg.ID, interest.ID).Return(false, nil)

	pusher := &recordingPusher{}
	m := newTestMatcher(st, pusher, 100)

	summary, err := m.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Matches)
	require.Empty(t, pusher.pushed)
}

// Доставка идёт пачками: все совпадения доезжают при любом размере пачки.
func TestRun_BatchedDispatch(t *testing.T) {
	center := models.LatLng{Lat: 42.6977, Lng: 23.3219}
	msg := pointMessage(t, "msg-00001", center)

	interests := make([]models.Interest, 7)
	for i := range interests {
		interests[i] = models.Interest{
			ID:          testUUID(i),
			UserID:      "user-1",
			Coordinates: center,
			Radius:      500,
		}
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStorage(ctrl)

	st.EXPECT().UnnotifiedMessages(gomock.Any()).Return([]models.Message{msg}, nil)
	st.EXPECT().AllInterests(gomock.Any()).Return(interests, nil)
	st.EXPECT().MatchExists(gomock.Any(), msg.ID, gomock.Any()).Return(false, nil).Times(7)
	st.EXPECT().CreateMatch(gomock.Any(), gomock.Any()).Return(nil).Times(7)
	st.EXPECT().MarkMatchNotified(gomock.Any(), gomock.Any(), testNow).Return(nil).Times(7)
	st.EXPECT().MarkMessageNotified(gomock.Any(), msg.ID, testNow).Return(nil)

	pusher := &recordingPusher{}
	m := newTestMatcher(st, pusher, 3)

	summary, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 7, summary.Matches)
	require.Equal(t, 7, summary.Delivered)
	require.Len(t, pusher.pushed, 7)
}

func testUUID(i int) string {
	return string(rune('a'+i)) + "0000000-0000-0000-0000-000000000000"
}
