// Package mongo хранит документы пользователей в MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
)

const (
	usersCollection = "users"
	connectTimeout  = 5 * time.Second
)

// userDocument - документ коллекции users, _id = адрес кошелька.
type userDocument struct {
	Wallet string  `bson:"_id"`
	XP     float64 `bson:"xp"`
}

// XPStore реализует storage.XPStore поверх коллекции users.
type XPStore struct {
	client *mgo.Client
	users  *mgo.Collection
	logger *zap.Logger
}

var _ storage.XPStore = (*XPStore)(nil)

// Connect подключается к MongoDB и проверяет соединение.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*XPStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	c, err := mgo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	s := newXPStore(c.Database(database).Collection(usersCollection), logger)
	s.client = c
	return s, nil
}

func newXPStore(users *mgo.Collection, logger *zap.Logger) *XPStore {
	return &XPStore{
		users:  users,
		logger: logger.Named("xp-store"),
	}
}

// GetXP возвращает xp пользователя или storage.ErrNotFound.
func (s *XPStore) GetXP(ctx context.Context, wallet string) (float64, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"_id": wallet}).Decode(&doc)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find user: %w", err)
	}
	return doc.XP, nil
}

// SetXP создаёт или обновляет документ пользователя.
func (s *XPStore) SetXP(ctx context.Context, wallet string, xp float64) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": wallet},
		bson.D{{Key: "$set", Value: bson.D{{Key: "xp", Value: xp}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.logger.Debug("xp updated", zap.String("wallet", wallet), zap.Float64("xp", xp))
	return nil
}

// Close закрывает соединение. Должен вызываться при завершении.
func (s *XPStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
