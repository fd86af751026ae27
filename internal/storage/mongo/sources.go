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

// CreateSource сохраняет исходный документ (create-if-absent по _id).
func (m *Mongo) CreateSource(ctx context.Context, doc models.SourceDocument) error {
	const op = "storage/mongo/CreateSource"

	if _, err := m.sources.InsertOne(ctx, doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UnprocessedSources возвращает непотреблённые документы по фильтру,
// старые первыми (порядок краулинга).
func (m *Mongo) UnprocessedSources(ctx context.Context, f storage.SourceFilter) ([]models.SourceDocument, error) {
	const op = "storage/mongo/UnprocessedSources"

	filter := bson.M{"processed": false}

	if f.SourceType != "" {
		filter["source_type"] = f.SourceType
	}

	crawled := bson.M{}
	if !f.Since.IsZero() {
		crawled["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		crawled["$lte"] = f.Until
	}
	if len(crawled) > 0 {
		filter["crawled_at"] = crawled
	}

	opts := options.Find().SetSort(bson.D{{Key: "crawled_at", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := m.sources.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.SourceDocument
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// MarkSourceProcessed проставляет отметку потребления.
func (m *Mongo) MarkSourceProcessed(ctx context.Context, id string, at time.Time) error {
	const op = "storage/mongo/MarkSourceProcessed"

	res, err := m.sources.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"processed": true, "processed_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
