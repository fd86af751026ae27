// notify — сопоставление финализированных сообщений с гео-интересами
// пользователей и доставка совпадений. Матчинг по минимальному расстоянию от
// центра интереса до геометрии сообщения; запись совпадения идемпотентна по
// паре (message, interest), доставка — пачками ограниченного размера.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	logctx "github.com/velinovaa/go-alerts-aggregator/internal/pkg/log"

	"github.com/velinovaa/go-alerts-aggregator/internal/geometry"
	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
)

// Pusher — граница канала доставки уведомлений.
type Pusher interface {
	Push(ctx context.Context, match models.NotificationMatch, msg models.Message) error
}

// LogPusher пишет уведомления в журнал вместо внешнего канала —
// поведение по умолчанию, когда канал доставки не сконфигурирован.
type LogPusher struct{}

// Push журналирует уведомление и всегда успешен.
func (LogPusher) Push(ctx context.Context, match models.NotificationMatch, msg models.Message) error {
	logctx.From(ctx).Info("notification",
		slog.String("user_id", match.UserID),
		slog.String("message_id", match.MessageID),
		slog.Float64("distance_m", match.Distance),
		slog.String("text", msg.Text),
	)
	return nil
}

// Matcher — проход нотификации по ненотифицированным сообщениям.
type Matcher struct {
	storage   storage.Storage
	pusher    Pusher
	batchSize int
	now       func() time.Time // подменяется в тестах
}

// NewMatcher собирает матчер; пустой pusher заменяется журнальным.
func NewMatcher(st storage.Storage, pusher Pusher, batchSize int) *Matcher {
	if pusher == nil {
		pusher = LogPusher{}
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Matcher{
		storage:   st,
		pusher:    pusher,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Summary — итог прохода нотификации.
type Summary struct {
	Messages  int
	Matches   int
	Delivered int
	Errors    int
}

// Run выполняет один проход: для каждого ненотифицированного сообщения
// перебираются все интересы, совпадения (расстояние ≤ радиуса) записываются
// и доставляются пачками; в конце сообщение помечается обработанным, чтобы
// последующие проходы его не трогали. DryRun печатает совпадения без записей
// и доставки.
func (m *Matcher) Run(ctx context.Context, dryRun bool) (*Summary, error) {
	const op = "notify/notify/Run"

	lg := logctx.From(ctx)

	msgs, err := m.storage.UnnotifiedMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	interests, err := m.storage.AllInterests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("notify_start",
		slog.String("op", op),
		slog.Int("messages", len(msgs)),
		slog.Int("interests", len(interests)),
		slog.Bool("dry_run", dryRun),
	)

	summary := &Summary{}

	for i := range msgs {
		msg := msgs[i]
		summary.Messages++

		matches, err := m.matchMessage(ctx, &msg, interests, dryRun)
		if err != nil {
			lg.Error("match_failed",
				slog.String("op", op),
				slog.String("message_id", msg.ID),
				slog.String("err", err.Error()),
			)
			continue
		}

		summary.Matches += len(matches)

		if dryRun {
			for _, match := range matches {
				lg.Info("dry_run_match",
					slog.String("op", op),
					slog.String("message_id", match.MessageID),
					slog.String("interest_id", match.InterestID),
					slog.Float64("distance_m", match.Distance),
				)
			}
			continue
		}

		delivered, failed := m.dispatch(ctx, matches, &msg)
		summary.Delivered += delivered
		summary.Errors += failed

		if err := m.storage.MarkMessageNotified(ctx, msg.ID, m.now()); err != nil {
			lg.Warn("mark_notified_failed",
				slog.String("op", op),
				slog.String("message_id", msg.ID),
				slog.String("err", err.Error()),
			)
		}
	}

	lg.Info("notify_done",
		slog.String("op", op),
		slog.Int("matches", summary.Matches),
		slog.Int("delivered", summary.Delivered),
		slog.Int("errors", summary.Errors),
	)

	return summary, nil
}

// matchMessage находит интересы, чьи геозоны задевает сообщение, и записывает
// новые совпадения. Повторная пара (message, interest) не создаёт дубликата.
func (m *Matcher) matchMessage(ctx context.Context, msg *models.Message, interests []models.Interest, dryRun bool) ([]models.NotificationMatch, error) {
	const op = "notify/notify/matchMessage"

	if len(msg.GeoJSON) == 0 {
		return nil, fmt.Errorf("%s: message %s has no geometry", op, msg.ID)
	}

	fc, err := geojson.UnmarshalFeatureCollection(msg.GeoJSON)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []models.NotificationMatch

	for _, interest := range interests {
		d, ok := geometry.NearestDistance(fc, interest.Coordinates)
		if !ok || d > interest.Radius {
			continue
		}

		exists, err := m.storage.MatchExists(ctx, msg.ID, interest.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			continue
		}

		match := models.NotificationMatch{
			ID:         uuid.NewString(),
			UserID:     interest.UserID,
			MessageID:  msg.ID,
			InterestID: interest.ID,
			Distance:   d,
			CreatedAt:  m.now(),
		}

		if !dryRun {
			if err := m.storage.CreateMatch(ctx, match); err != nil {
				// гонка двух проходов: пара уже записана — не дубль, пропуск
				if errors.Is(err, storage.ErrAlreadyExists) {
					continue
				}
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}

		out = append(out, match)
	}

	return out, nil
}

// dispatch доставляет совпадения пачками: внутри пачки параллельно, пачки —
// последовательно, чтобы не захлёбывать канал доставки.
func (m *Matcher) dispatch(ctx context.Context, matches []models.NotificationMatch, msg *models.Message) (delivered, failed int) {
	lg := logctx.From(ctx)

	var mu sync.Mutex

	for start := 0; start < len(matches); start += m.batchSize {
		end := start + m.batchSize
		if end > len(matches) {
			end = len(matches)
		}

		var wg sync.WaitGroup

		for _, match := range matches[start:end] {
			wg.Add(1)

			go func(match models.NotificationMatch) {
				defer wg.Done()

				if err := m.pusher.Push(ctx, match, *msg); err != nil {
					if serr := m.storage.SetMatchError(ctx, match.ID, err.Error()); serr != nil {
						lg.Warn("set_match_error_failed",
							slog.String("match_id", match.ID),
							slog.String("err", serr.Error()),
						)
					}

					mu.Lock()
					failed++
					mu.Unlock()
					return
				}

				if err := m.storage.MarkMatchNotified(ctx, match.ID, m.now()); err != nil {
					lg.Warn("mark_match_notified_failed",
						slog.String("match_id", match.ID),
						slog.String("err", err.Error()),
					)
				}

				mu.Lock()
				delivered++
				mu.Unlock()
			}(match)
		}

		wg.Wait()
	}

	return delivered, failed
}
