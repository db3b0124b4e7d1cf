package repository

import (
	"context"
	"fmt"
	"time"

	"mindgym-api/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByCheckoutID(ctx context.Context, checkoutSessionID string) (*model.Payment, error)
	// MarkCompleted moves a payment PENDING -> COMPLETED. The status filter
	// makes the checkout session id an idempotency key: concurrent or
	// redelivered webhooks complete the record exactly once. completed
	// reports whether this call performed the transition.
	MarkCompleted(ctx context.Context, checkoutSessionID string) (completed bool, err error)
}

type paymentRepoImpl struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) PaymentRepository {
	return &paymentRepoImpl{
		coll: db.Collection("payments"),
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.Payment) error {
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}

	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		payment.ID = oid
	}
	return nil
}

func (r *paymentRepoImpl) FindByCheckoutID(ctx context.Context, checkoutSessionID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.coll.FindOne(ctx, bson.M{"checkout_session_id": checkoutSessionID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find payment by checkout id: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepoImpl) MarkCompleted(ctx context.Context, checkoutSessionID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"checkout_session_id": checkoutSessionID,
			"status":              model.PaymentStatusPending,
		},
		bson.M{"$set": bson.M{
			"status":     model.PaymentStatusCompleted,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark payment completed: %w", err)
	}

	return res.ModifiedCount > 0, nil
}
