package repository

import (
	"context"
	"fmt"
	"time"

	"mindgym-api/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Session, error)
	// Delete revokes a session server-side. Missing documents are not an
	// error: a double sign-out should be a no-op.
	Delete(ctx context.Context, id bson.ObjectID) error
}

type sessionRepoImpl struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) SessionRepository {
	return &sessionRepoImpl{
		coll: db.Collection("sessions"),
	}
}

func (r *sessionRepoImpl) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		session.ID = oid
	}
	return nil
}

func (r *sessionRepoImpl) FindByID(ctx context.Context, id bson.ObjectID) (*model.Session, error) {
	var session model.Session
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}

	return &session, nil
}

func (r *sessionRepoImpl) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
