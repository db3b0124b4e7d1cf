package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mindgym-api/internal/config"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	// ErrInvalidSignature means the Stripe-Signature header does not match the
	// raw request body. Signature verification is the sole authenticity check
	// for payment notifications.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent means the signature checked out but the event payload
	// could not be decoded. Redelivery of such an event must not crash the
	// handler, so callers log and acknowledge it.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// EventKind is the closed set of webhook event variants the application
// consumes. Everything Stripe sends outside this set maps to EventIgnored.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventCheckoutCompleted
	EventPaymentSucceeded
)

// CheckoutEvent is a verified, decoded webhook notification.
type CheckoutEvent struct {
	Kind    EventKind
	EventID string
	Type    string
	// CheckoutID is the checkout session id; empty for payment_intent events.
	CheckoutID string
	// UserID is the correlation token: client_reference_id, falling back to
	// the userId metadata field. Empty if the event carries neither.
	UserID string
}

// CheckoutSession is the subset of a Stripe checkout session the application
// cares about.
type CheckoutSession struct {
	ID                string
	URL               string
	ClientReferenceID string
	Metadata          map[string]string
	Paid              bool
}

type StripeClient interface {
	// CreateCheckoutSession opens a single line-item, one-time checkout with
	// the user id embedded as client_reference_id.
	CreateCheckoutSession(ctx context.Context, userID string) (*CheckoutSession, error)
	// GetCheckoutSession re-queries Stripe for authoritative payment status.
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	// VerifyWebhook validates the signature over the raw, unparsed body and
	// maps the event onto the closed CheckoutEvent set.
	VerifyWebhook(payload []byte, sigHeader string) (*CheckoutEvent, error)
}

type stripeClientImpl struct {
	api           *stripeclient.API
	webhookSecret string
	priceID       string
	baseURL       string
}

func NewStripeClient(stripeCfg *config.Stripe, baseURL string) StripeClient {
	return &stripeClientImpl{
		api:           stripeclient.New(stripeCfg.SecretKey, nil),
		webhookSecret: stripeCfg.WebhookSecret,
		priceID:       stripeCfg.PriceID,
		baseURL:       baseURL,
	}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, userID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/api/billing/success?session_id={CHECKOUT_SESSION_ID}", c.baseURL)),
		CancelURL:         stripe.String(c.baseURL), // if user cancels during checkout, return to our homepage
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"userId": userID,
		},
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return fromStripeSession(sess), nil
}

func (c *stripeClientImpl) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}

	sess, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}

	return fromStripeSession(sess), nil
}

func (c *stripeClientImpl) VerifyWebhook(payload []byte, sigHeader string) (*CheckoutEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		// A correctly signed but undecodable payload is a malformed event,
		// not an authenticity failure.
		if errors.Is(err, webhook.ErrInvalidHeader) ||
			errors.Is(err, webhook.ErrNotSigned) ||
			errors.Is(err, webhook.ErrNoValidSignature) ||
			errors.Is(err, webhook.ErrTooOld) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode checkout session: %v", ErrMalformedEvent, err)
		}
		userID := sess.ClientReferenceID
		if userID == "" {
			userID = sess.Metadata["userId"]
		}
		return &CheckoutEvent{
			Kind:       EventCheckoutCompleted,
			EventID:    event.ID,
			Type:       string(event.Type),
			CheckoutID: sess.ID,
			UserID:     userID,
		}, nil

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: decode payment intent: %v", ErrMalformedEvent, err)
		}
		return &CheckoutEvent{
			Kind:    EventPaymentSucceeded,
			EventID: event.ID,
			Type:    string(event.Type),
			UserID:  intent.Metadata["userId"],
		}, nil

	default:
		return &CheckoutEvent{
			Kind:    EventIgnored,
			EventID: event.ID,
			Type:    string(event.Type),
		}, nil
	}
}

func fromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	return &CheckoutSession{
		ID:                sess.ID,
		URL:               sess.URL,
		ClientReferenceID: sess.ClientReferenceID,
		Metadata:          sess.Metadata,
		Paid:              sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
}
