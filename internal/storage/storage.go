// storage описывает контракт хранилища (документная БД с коллекционной
// семантикой). Вставка по собственному ключу — create-if-absent: на этой
// гарантии держатся и проверка дедупликации, и аллокация слагов сообщений.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — вставка по занятому ключу; вызывающий различает
	// этот вариант (коллизия слага, повторный инжест) от прочих ошибок.
	ErrAlreadyExists = errors.New("already exists")
)

// SourceFilter — условия выборки исходных документов.
type SourceFilter struct {
	// SourceType — фильтр по системе-источнику; пустое значение — все.
	SourceType models.SourceType
	// Since/Until — диапазон по времени краулинга.
	Since time.Time
	Until time.Time
	// Limit — максимум документов; 0 — без ограничения.
	Limit int64
}

// Storage — операции хранилища, используемые конвейером и транспортом.
type Storage interface {
	// --- исходные документы ---

	// CreateSource сохраняет документ (create-if-absent по _id).
	// Повторная вставка того же ключа — ErrAlreadyExists.
	CreateSource(ctx context.Context, doc models.SourceDocument) error

	// UnprocessedSources возвращает документы без отметки processed,
	// удовлетворяющие фильтру, в порядке краулинга.
	UnprocessedSources(ctx context.Context, f SourceFilter) ([]models.SourceDocument, error)

	// MarkSourceProcessed проставляет отметку потребления.
	MarkSourceProcessed(ctx context.Context, id string, at time.Time) error

	// --- сообщения ---

	// CreateMessage атомарно вставляет сообщение под его собственным _id.
	// Занятый слаг — ErrAlreadyExists (вызывающий перегенерирует).
	CreateMessage(ctx context.Context, msg models.Message) error

	// MessageExistsBySourceKey — проверка дедупликации перед инжестом.
	MessageExistsBySourceKey(ctx context.Context, key string) (bool, error)

	// MessageByID возвращает сообщение по слагу; нет — ErrNotFound.
	MessageByID(ctx context.Context, id string) (*models.Message, error)

	// ListMessages возвращает сообщения, новые первыми.
	ListMessages(ctx context.Context, opts models.ListOptions) ([]models.Message, error)

	// UnnotifiedMessages — финализированные сообщения без отметки нотификации.
	UnnotifiedMessages(ctx context.Context) ([]models.Message, error)

	// MarkMessageNotified фиксирует завершение прохода нотификации.
	MarkMessageNotified(ctx context.Context, id string, at time.Time) error

	// --- интересы ---

	CreateInterest(ctx context.Context, interest models.Interest) error
	UpdateInterest(ctx context.Context, interest models.Interest) error
	DeleteInterest(ctx context.Context, id string) error
	InterestByID(ctx context.Context, id string) (*models.Interest, error)
	InterestsByUser(ctx context.Context, userID string) ([]models.Interest, error)
	AllInterests(ctx context.Context) ([]models.Interest, error)

	// --- совпадения нотификаций ---

	// MatchExists — проверка идемпотентности пары (messageID, interestID).
	MatchExists(ctx context.Context, messageID string, interestID string) (bool, error)

	// CreateMatch создаёт запись совпадения (не более одной на пару).
	CreateMatch(ctx context.Context, match models.NotificationMatch) error

	// MarkMatchNotified фиксирует успешную доставку.
	MarkMatchNotified(ctx context.Context, id string, at time.Time) error

	// SetMatchError записывает ошибку доставки на совпадении.
	SetMatchError(ctx context.Context, id string, errMsg string) error

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
