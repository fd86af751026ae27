package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
)

// MatchExists — проверка идемпотентности пары (messageID, interestID).
func (m *Mongo) MatchExists(ctx context.Context, messageID string, interestID string) (bool, error) {
	const op = "storage/mongo/MatchExists"

	n, err := m.matches.CountDocuments(ctx,
		bson.M{"message_id": messageID, "interest_id": interestID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// CreateMatch создаёт запись совпадения. Уникальный индекс по паре
// (message_id, interest_id) страхует гонку проверка-вставка.
func (m *Mongo) CreateMatch(ctx context.Context, match models.NotificationMatch) error {
	const op = "storage/mongo/CreateMatch"

	if _, err := m.matches.InsertOne(ctx, match); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MarkMatchNotified фиксирует успешную доставку пуша.
func (m *Mongo) MarkMatchNotified(ctx context.Context, id string, at time.Time) error {
	const op = "storage/mongo/MarkMatchNotified"

	res, err := m.matches.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"notified": true, "notified_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SetMatchError записывает ошибку доставки; другим совпадениям не мешает.
func (m *Mongo) SetMatchError(ctx context.Context, id string, errMsg string) error {
	const op = "storage/mongo/SetMatchError"

	res, err := m.matches.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"error": errMsg}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
