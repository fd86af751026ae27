package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
)

// CreateMessage атомарно вставляет сообщение под его собственным слагом.
// Занятый слаг или занятый source_key — ErrAlreadyExists.
func (m *Mongo) CreateMessage(ctx context.Context, msg models.Message) error {
	const op = "storage/mongo/CreateMessage"

	if _, err := m.messages.InsertOne(ctx, msg); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MessageExistsBySourceKey — проверка дедупликации перед инжестом.
func (m *Mongo) MessageExistsBySourceKey(ctx context.Context, key string) (bool, error) {
	const op = "storage/mongo/MessageExistsBySourceKey"

	n, err := m.messages.CountDocuments(ctx, bson.M{"source_key": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// MessageByID возвращает сообщение по слагу.
func (m *Mongo) MessageByID(ctx context.Context, id string) (*models.Message, error) {
	const op = "storage/mongo/MessageByID"

	var msg models.Message
	err := m.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &msg, nil
}

// ListMessages возвращает сообщения, новые первыми.
// Фильтр актуальности (OnlyCurrent) применяется слоем сервиса: правило
// пересечения интервалов с "now" не выражается запросом по строковым датам.
func (m *Mongo) ListMessages(ctx context.Context, opts models.ListOptions) ([]models.Message, error) {
	const op = "storage/mongo/ListMessages"

	findOpts := options.Find().SetSort(bson.D{{Key: "finalized_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := m.messages.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UnnotifiedMessages — финализированные сообщения без отметки нотификации.
func (m *Mongo) UnnotifiedMessages(ctx context.Context) ([]models.Message, error) {
	const op = "storage/mongo/UnnotifiedMessages"

	cur, err := m.messages.Find(ctx,
		bson.M{"notified_at": bson.M{"$exists": false}},
		options.Find().SetSort(bson.D{{Key: "finalized_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// MarkMessageNotified фиксирует завершение прохода нотификации.
func (m *Mongo) MarkMessageNotified(ctx context.Context, id string, at time.Time) error {
	const op = "storage/mongo/MarkMessageNotified"

	res, err := m.messages.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"notified_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
