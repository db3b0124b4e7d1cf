package service

import (
	"context"
	"testing"

	"mindgym-api/internal/client"
	"mindgym-api/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full unlock flow: register, start a checkout, receive the completed webhook,
// and the session now resolves to a paid user.
func TestCheckoutUnlockFlow(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	payments := newFakePaymentRepo()
	stripe := &fakeStripeClient{
		nextSession: &client.CheckoutSession{ID: "cs_flow", URL: "https://checkout.stripe.com/cs_flow"},
	}

	auth := NewAuthService(users, sessions, zerolog.Nop())
	billing := NewBillingService(stripe, users, payments, zerolog.Nop())
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Alice", "alice@example.com", "pw-one-two-three")
	require.NoError(t, err)
	assert.False(t, user.HasPaid)

	checkout, err := billing.CreateCheckout(ctx, user.ID)
	require.NoError(t, err)

	stripe.verifyEvent = completedEvent(checkout.CheckoutSessionID, user.ID)
	require.NoError(t, billing.HandleWebhook(ctx, []byte("{}"), "sig"))

	got, err := auth.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.HasPaid)

	p, err := payments.FindByCheckoutID(ctx, checkout.CheckoutSessionID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, p.Status)
}
