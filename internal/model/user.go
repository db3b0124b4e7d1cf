package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is an identity record in the users collection. Email carries a unique
// index (case-sensitive exact match). HasPaid is mutated only by the billing
// service.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	HasPaid      bool          `bson:"has_paid"`
	CreatedAt    time.Time     `bson:"created_at"`
}
