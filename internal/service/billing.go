package service

import (
	"context"
	"errors"
	"fmt"

	"mindgym-api/internal/client"
	"mindgym-api/internal/dto"
	"mindgym-api/internal/model"
	"mindgym-api/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type BillingService interface {
	// CreateCheckout opens a Stripe checkout session for the user and records
	// a PENDING payment keyed by the checkout session id.
	CreateCheckout(ctx context.Context, userID string) (*dto.CheckoutResponse, error)
	// HandleWebhook verifies the raw payload against the signature header and
	// applies the event. Returns client.ErrInvalidSignature when the
	// signature does not match; malformed or unattributable events are logged
	// and swallowed so the processor stops redelivering them.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	// PollStatus re-queries Stripe for the checkout referenced by the payment
	// record and applies the paid state if the callback has not arrived yet.
	PollStatus(ctx context.Context, checkoutSessionID string) (bool, error)
}

type billingServiceImpl struct {
	stripeClient client.StripeClient
	userRepo     repository.UserRepository
	paymentRepo  repository.PaymentRepository
	log          zerolog.Logger
}

func NewBillingService(
	stripeClient client.StripeClient,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	log zerolog.Logger,
) BillingService {
	return &billingServiceImpl{
		stripeClient: stripeClient,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		log:          log,
	}
}

func (s *billingServiceImpl) CreateCheckout(ctx context.Context, userID string) (*dto.CheckoutResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	sess, err := s.stripeClient.CreateCheckoutSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}

	if err := s.paymentRepo.Create(ctx, &model.Payment{
		CheckoutSessionID: sess.ID,
		UserID:            uid,
		Status:            model.PaymentStatusPending,
	}); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	return &dto.CheckoutResponse{
		CheckoutSessionID: sess.ID,
		CheckoutURL:       sess.URL,
	}, nil
}

func (s *billingServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.stripeClient.VerifyWebhook(payload, sigHeader)
	if err != nil {
		if errors.Is(err, client.ErrMalformedEvent) {
			// Verified but undecodable; acknowledging stops the redelivery loop.
			s.log.Warn().Err(err).Msg("malformed webhook event, acknowledging without action")
			return nil
		}
		return err
	}

	switch event.Kind {
	case client.EventCheckoutCompleted, client.EventPaymentSucceeded:
		return s.applyPayment(ctx, event)
	default:
		s.log.Debug().
			Str("event_id", event.EventID).
			Str("type", event.Type).
			Msg("ignoring webhook event type")
		return nil
	}
}

// applyPayment is the idempotent state transition: it may run any number of
// times for the same checkout (webhook redelivery, concurrent delivery, the
// poll path racing the webhook) and the outcome is the same.
func (s *billingServiceImpl) applyPayment(ctx context.Context, event *client.CheckoutEvent) error {
	if event.UserID == "" {
		s.log.Warn().
			Str("event_id", event.EventID).
			Str("type", event.Type).
			Msg("payment event carries no user reference, acknowledging without action")
		return nil
	}
	uid, err := bson.ObjectIDFromHex(event.UserID)
	if err != nil {
		s.log.Warn().
			Str("event_id", event.EventID).
			Str("user_ref", event.UserID).
			Msg("payment event user reference is not a valid id, acknowledging without action")
		return nil
	}

	modified, err := s.userRepo.MarkPaid(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().
				Str("event_id", event.EventID).
				Str("user_id", event.UserID).
				Msg("payment event references missing user, acknowledging without action")
			return nil
		}
		return fmt.Errorf("apply payment: %w", err)
	}
	if modified {
		s.log.Info().Str("user_id", event.UserID).Msg("user unlocked")
	} else {
		s.log.Debug().Str("user_id", event.UserID).Msg("user already unlocked, duplicate delivery")
	}

	if event.CheckoutID == "" {
		return nil
	}
	completed, err := s.paymentRepo.MarkCompleted(ctx, event.CheckoutID)
	if err != nil {
		return fmt.Errorf("complete payment record: %w", err)
	}
	if !completed {
		s.log.Debug().
			Str("checkout_session_id", event.CheckoutID).
			Msg("payment record already completed or unknown")
	}

	return nil
}

func (s *billingServiceImpl) PollStatus(ctx context.Context, checkoutSessionID string) (bool, error) {
	payment, err := s.paymentRepo.FindByCheckoutID(ctx, checkoutSessionID)
	if err != nil {
		return false, err
	}

	sess, err := s.stripeClient.GetCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		return false, fmt.Errorf("poll checkout status: %w", err)
	}
	if !sess.Paid {
		return false, nil
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		userID = sess.Metadata["userId"]
	}
	if userID == "" {
		// The pending payment record remembers who started the checkout.
		userID = payment.UserID.Hex()
	}

	err = s.applyPayment(ctx, &client.CheckoutEvent{
		Kind:       client.EventCheckoutCompleted,
		Type:       "poll",
		CheckoutID: checkoutSessionID,
		UserID:     userID,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
