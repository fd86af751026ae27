// mongo — реализация контракта storage поверх MongoDB.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/velinovaa/go-alerts-aggregator/internal/config"
)

const (
	sourcesCollection   = "source_documents"
	messagesCollection  = "messages"
	interestsCollection = "interests"
	matchesCollection   = "notification_matches"

	defaultDBName = "alerts"
)

// Mongo — тонкий адаптер подключения и коллекций MongoDB.
type Mongo struct {
	cfg       *config.Config
	client    *mongodriver.Client
	db        *mongodriver.Database
	sources   *mongodriver.Collection
	messages  *mongodriver.Collection
	interests *mongodriver.Collection
	matches   *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение, подготавливает коллекции
// и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:       cfg,
		client:    cli,
		db:        db,
		sources:   db.Collection(sourcesCollection),
		messages:  db.Collection(messagesCollection),
		interests: db.Collection(interestsCollection),
		matches:   db.Collection(matchesCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(context.Background())
		return nil, fmt.Errorf("mongo ensure indexes: %w", err)
	}

	return m, nil
}

// ensureIndexes создаёт индексы, на которых держатся инварианты конвейера.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	// ключ дедупликации: не уникальный — один источник может распасться на
	// несколько сообщений с общим ключом; идемпотентность обеспечивает
	// последовательная проверка-перед-вставкой оркестратора
	_, err := m.messages.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "source_key", Value: 1}},
		Options: options.Index().SetSparse(true),
	})
	if err != nil {
		return err
	}

	// не более одного совпадения на пару (message_id, interest_id)
	_, err = m.matches.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "message_id", Value: 1}, {Key: "interest_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.interests.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = m.sources.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "processed", Value: 1}, {Key: "crawled_at", Value: 1}},
	})

	return err
}

// Close закрывает соединение с MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// databaseFromURI достаёт имя БД из URI; без него — defaultDBName.
func databaseFromURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return defaultDBName
	}

	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		return defaultDBName
	}

	return name
}
