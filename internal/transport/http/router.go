// Package http собирает REST-роутер API на chi: CRUD гео-интересов, чтение
// сообщений и прямые пользовательские репорты.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/handlers"
	"github.com/velinovaa/go-alerts-aggregator/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	Handlers handlers.Options
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(st storage.Storage, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(st, opts.Handlers)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// interests
	r.Post("/interests", h.CreateInterest)
	r.Get("/interests", h.ListInterests)
	r.Put("/interests/{id}", h.UpdateInterest)
	r.Delete("/interests/{id}", h.DeleteInterest)

	// messages
	r.Get("/messages", h.ListMessages)
	r.Get("/messages/{id}", h.GetMessage)

	// reports
	r.Post("/reports", h.CreateReport)
}
