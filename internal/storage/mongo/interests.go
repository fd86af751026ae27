package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
)

// CreateInterest сохраняет геозону интереса.
func (m *Mongo) CreateInterest(ctx context.Context, interest models.Interest) error {
	const op = "storage/mongo/CreateInterest"

	if _, err := m.interests.InsertOne(ctx, interest); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateInterest обновляет координаты/радиус геозоны.
func (m *Mongo) UpdateInterest(ctx context.Context, interest models.Interest) error {
	const op = "storage/mongo/UpdateInterest"

	res, err := m.interests.UpdateOne(ctx,
		bson.M{"_id": interest.ID},
		bson.M{"$set": bson.M{
			"coordinates": interest.Coordinates,
			"radius":      interest.Radius,
			"updated_at":  interest.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteInterest удаляет геозону.
func (m *Mongo) DeleteInterest(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteInterest"

	res, err := m.interests.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// InterestByID возвращает геозону по идентификатору.
func (m *Mongo) InterestByID(ctx context.Context, id string) (*models.Interest, error) {
	const op = "storage/mongo/InterestByID"

	var interest models.Interest
	err := m.interests.FindOne(ctx, bson.M{"_id": id}).Decode(&interest)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &interest, nil
}

// InterestsByUser возвращает геозоны одного пользователя.
func (m *Mongo) InterestsByUser(ctx context.Context, userID string) ([]models.Interest, error) {
	const op = "storage/mongo/InterestsByUser"

	cur, err := m.interests.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Interest
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// AllInterests возвращает все геозоны (проход матчера нотификаций).
func (m *Mongo) AllInterests(ctx context.Context) ([]models.Interest, error) {
	const op = "storage/mongo/AllInterests"

	cur, err := m.interests.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Interest
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
