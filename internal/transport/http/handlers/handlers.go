// handlers — REST-обработчики API: CRUD гео-интересов, чтение сообщений,
// прямые пользовательские репорты. Доменные ошибки конвертируются в единый
// формат через httperr.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/httperr"
)

// Options — пределы и умолчания слоя API.
type Options struct {
	// DefaultLimit/MaxLimit — пагинация списков.
	DefaultLimit int64
	MaxLimit     int64
	// RelevanceWindow и Location — параметры фильтра current для сообщений.
	RelevanceWindow time.Duration
	Location        *time.Location
	// DefaultLocality — населённый пункт пользовательских репортов.
	DefaultLocality string
}

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	storage storage.Storage
	opts    Options
	now     func() time.Time // подменяется в тестах
}

func New(st storage.Storage, opts Options) *Handlers {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 500
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Handlers{
		storage: st,
		opts:    opts,
		now:     time.Now,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// invalidArgument — локальная ошибка парсинга/валидации входа -> 400.
func invalidArgument(why string) error {
	return fmt.Errorf("%s: %w", why, httperr.ErrInvalidArgument)
}

// validCoordinates проверяет, что координата лежит в диапазоне WGS84.
func validCoordinates(c models.LatLng) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
