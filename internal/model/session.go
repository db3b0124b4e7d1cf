package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session is an ephemeral credential. The document id doubles as the opaque
// token handed to the client in the session cookie. Expired sessions are
// rejected on validation, never deleted automatically.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	CreatedAt time.Time     `bson:"created_at"`
	ExpiresAt time.Time     `bson:"expires_at"`
}

// ExpiredAt reports whether the session is past its absolute expiry.
// A session is still valid at exactly ExpiresAt.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
