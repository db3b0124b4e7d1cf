package client

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// InitMongoClient connects to the document store, verifies the connection and
// creates the indexes the application relies on. Called once at process start;
// the returned client is injected into repositories rather than looked up
// through package state.
func InitMongoClient(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	cl, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cl.Ping(pingCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := cl.Database(dbName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return cl, db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	// Unique email backs the Conflict check on registration.
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	// Unique checkout session id is the idempotency key for webhook delivery.
	_, err = db.Collection("payments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "checkout_session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("payments checkout_session_id index: %w", err)
	}

	// No TTL index on sessions: expired sessions are rejected on validation,
	// not deleted.
	_, err = db.Collection("sessions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("sessions user_id index: %w", err)
	}

	return nil
}
