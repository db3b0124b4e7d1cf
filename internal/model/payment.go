package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
)

// Payment tracks one Stripe checkout attempt. CheckoutSessionID carries a
// unique index and acts as the idempotency key: the pending -> completed
// transition happens at most once no matter how often Stripe redelivers.
type Payment struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	CheckoutSessionID string        `bson:"checkout_session_id"`
	UserID            bson.ObjectID `bson:"user_id"`
	Status            string        `bson:"status"` // PENDING, COMPLETED
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}
