// geocode разрешает свободный текст локаций (адреса, пересечения, концы
// уличных участков) в координаты через один из взаимозаменяемых бэкендов.
//
// Бэкенд выбирается конфигурацией один раз на старте (закрытое множество
// вариантов за одним интерфейсом, без рефлексии). Последовательные внешние
// вызовы разнесены фиксированной паузой — осознанный backpressure ради квот
// сторонних провайдеров, не упущение.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logctx "github.com/velinovaa/go-alerts-aggregator/internal/pkg/log"

	"github.com/velinovaa/go-alerts-aggregator/internal/config"
	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// Backend — единый контракт бэкенда геокодирования.
// Реализация обязана переносить кириллический ввод без порчи.
type Backend interface {
	// Resolve разрешает текст в адрес; (nil, nil) — совпадения нет.
	Resolve(ctx context.Context, text string) (*models.Address, error)
}

// PathResolver — опциональная способность бэкенда вернуть геометрию пути
// между двумя точками (для полигонов уличных участков).
type PathResolver interface {
	Path(ctx context.Context, from, to models.LatLng) ([]models.LatLng, error)
}

// EndpointKey — ключ результата разрешения конца участка: street||cross.
func EndpointKey(street, cross string) string {
	return street + "||" + cross
}

// Router диспетчеризует запросы в выбранный бэкенд, дедуплицирует пары
// пересечений и выдерживает паузу между внешними вызовами.
type Router struct {
	backend Backend
	limiter *rate.Limiter
}

// NewRouter собирает роутер над готовым бэкендом.
// interval <= 0 отключает паузы (используется в тестах).
func NewRouter(backend Backend, interval time.Duration) *Router {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Router{
		backend: backend,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// NewBackend создаёт бэкенд по конфигурации (закрытое множество провайдеров).
func NewBackend(cfg config.GeocodeConfig) (Backend, error) {
	const op = "geocode/geocode/NewBackend"

	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "google":
		return NewGoogleBackend(client, cfg.APIKey, cfg.Country), nil
	case "directions":
		return NewDirectionsBackend(client, cfg.APIKey, cfg.Country), nil
	case "tiles":
		return NewTilesBackend(client, cfg.APIKey, cfg.Country), nil
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}
}

// ResolveAddresses последовательно разрешает строки адресов.
// Неудачный одиночный вызов логируется предупреждением и опускается из
// результата — батч не прерывается; вызывающий трактует пропуск как
// "не разрешено" и выбирает фолбэк.
func (r *Router) ResolveAddresses(ctx context.Context, texts []string) []models.Address {
	const op = "geocode/geocode/ResolveAddresses"

	lg := logctx.From(ctx)
	out := make([]models.Address, 0, len(texts))

	for _, text := range texts {
		if err := r.limiter.Wait(ctx); err != nil {
			lg.Warn("geocode_cancelled", slog.String("op", op), slog.String("err", err.Error()))
			return out
		}

		addr, err := r.backend.Resolve(ctx, text)
		if err != nil {
			lg.Warn("geocode_miss",
				slog.String("op", op),
				slog.String("text", text),
				slog.String("err", err.Error()),
			)
			continue
		}

		if addr == nil {
			lg.Warn("geocode_no_match", slog.String("op", op), slog.String("text", text))
			continue
		}

		out = append(out, *addr)
	}

	return out
}

// ResolveStreetEndpoints разрешает концы уличных участков (пересечения).
// Пары (street, cross) дедуплицируются до диспетчеризации, чтобы не жечь
// внешние вызовы повторно. Отсутствующий в результате ключ — "не разрешено".
func (r *Router) ResolveStreetEndpoints(ctx context.Context, locality string, sections []models.StreetSection) map[string]models.LatLng {
	const op = "geocode/geocode/ResolveStreetEndpoints"

	lg := logctx.From(ctx)

	// порядок запросов сохраняем, ключи дедуплицируем
	type pair struct{ street, cross string }
	var order []pair
	seen := make(map[string]struct{})

	add := func(street, cross string) {
		if street == "" || cross == "" {
			return
		}

		key := EndpointKey(street, cross)
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		order = append(order, pair{street, cross})
	}

	for _, s := range sections {
		add(s.Street, s.From)
		add(s.Street, s.To)
	}

	out := make(map[string]models.LatLng, len(order))

	for _, p := range order {
		if err := r.limiter.Wait(ctx); err != nil {
			lg.Warn("geocode_cancelled", slog.String("op", op), slog.String("err", err.Error()))
			return out
		}

		query := IntersectionQuery(p.street, p.cross, locality)

		addr, err := r.backend.Resolve(ctx, query)
		if err != nil {
			lg.Warn("intersection_miss",
				slog.String("op", op),
				slog.String("query", query),
				slog.String("err", err.Error()),
			)
			continue
		}

		if addr == nil {
			lg.Warn("intersection_no_match", slog.String("op", op), slog.String("query", query))
			continue
		}

		out[EndpointKey(p.street, p.cross)] = addr.Coordinates
	}

	return out
}

// Path возвращает геометрию пути между точками, если бэкенд её умеет;
// иначе nil (вызывающий строит прямую между концами).
func (r *Router) Path(ctx context.Context, from, to models.LatLng) []models.LatLng {
	const op = "geocode/geocode/Path"

	pr, ok := r.backend.(PathResolver)
	if !ok {
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}

	path, err := pr.Path(ctx, from, to)
	if err != nil {
		logctx.From(ctx).Warn("path_miss", slog.String("op", op), slog.String("err", err.Error()))
		return nil
	}

	return path
}

// IntersectionQuery — нормализованная строка пересечения:
// "Street A, <locality> & Street B, <locality>".
func IntersectionQuery(street, cross, locality string) string {
	return withLocality(street, locality) + " & " + withLocality(cross, locality)
}

// withLocality добавляет суффикс населённого пункта, когда его ещё нет.
func withLocality(text, locality string) string {
	if locality == "" {
		return text
	}

	if strings.Contains(strings.ToLower(text), strings.ToLower(locality)) {
		return text
	}

	return text + ", " + locality
}
