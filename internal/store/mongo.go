package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadID marks identifiers that are not valid ObjectID hex; handlers map
// it to 400 rather than 404.
var ErrBadID = errors.New("invalid id format")

const connectTimeout = 10 * time.Second

// Mongo owns the client and hands out collection-backed stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(dbName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info().Str("module", "store").Str("db", dbName).Msg("mongo connected")
	return &Mongo{client: client, db: db}, nil
}

// ensureIndexes creates the indexes the stores rely on. The unique email
// index is what makes the duplicate-key check in user creation race-free;
// the handler's pre-lookup only exists for a friendlier error message.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes())
	return err
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Stores() Store {
	return Store{
		Users: &mongoUsers{col: m.db.Collection("users")},
		Rooms: &mongoRooms{col: m.db.Collection("rooms")},
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return oid, nil
}
