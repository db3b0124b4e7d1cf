package handler

import (
	"errors"
	"io"
	"net/http"

	"mindgym-api/internal/client"
	"mindgym-api/internal/dto"
	"mindgym-api/internal/middleware"
	"mindgym-api/internal/repository"
	"mindgym-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const webhookBodyLimit = 1 << 20 // 1MiB

type BillingHandler struct {
	billingService service.BillingService
	log            zerolog.Logger
}

func NewBillingHandler(billingService service.BillingService, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		log:            log,
	}
}

func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	resp, err := h.billingService.CreateCheckout(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("create checkout failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start checkout"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) CheckoutStatus(c echo.Context) error {
	ctx := c.Request().Context()

	checkoutID := c.Param("id")
	paid, err := h.billingService.PollStatus(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown checkout session"})
		}
		h.log.Error().Err(err).Str("checkout_session_id", checkoutID).Msg("poll checkout status failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not check payment status"})
	}

	return c.JSON(http.StatusOK, dto.CheckoutStatusResponse{Paid: paid})
}

// Webhook consumes Stripe notifications. The signature binds to the raw body,
// so the body must reach verification unparsed. A signature mismatch is a 400;
// anything verified is acknowledged with 200 so Stripe does not retry events
// we chose to ignore. Store failures return 500 on purpose: Stripe's own
// redelivery is the retry mechanism, and applying a payment is idempotent.
func (h *BillingHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read request body"})
	}
	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.billingService.HandleWebhook(ctx, payload, sigHeader); err != nil {
		if errors.Is(err, client.ErrInvalidSignature) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
		}
		h.log.Error().Err(err).Msg("webhook processing failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "webhook processing failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// Success is where Stripe redirects the buyer. The webhook usually wins the
// race, but polling here covers the case where the buyer arrives first.
func (h *BillingHandler) Success(c echo.Context) error {
	ctx := c.Request().Context()

	checkoutID := c.QueryParam("session_id")
	if checkoutID == "" {
		return c.String(http.StatusBadRequest, "missing session_id")
	}

	paid, err := h.billingService.PollStatus(ctx, checkoutID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error().Err(err).Str("checkout_session_id", checkoutID).Msg("poll on success page failed")
	}

	headline := "Payment received"
	detail := "Your account is unlocked. All training tasks are now available."
	if !paid {
		headline = "Payment processing"
		detail = "We are confirming your payment. Your account unlocks as soon as it completes."
	}

	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>` + headline + `</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
			.countdown {
				font-size: 24px;
				font-weight: bold;
			}
		</style>
	</head>
	<body>
		<h2>` + headline + `</h2>
		<p>` + detail + `</p>
		<p>Redirecting to your training in <span class="countdown" id="countdown">5</span> seconds…</p>

		<script>
			let seconds = 5;
			const el = document.getElementById("countdown");

			const timer = setInterval(function () {
				seconds--;
				el.textContent = seconds;

				if (seconds <= 0) {
					clearInterval(timer);
					window.location.href = "/";
				}
			}, 1000);
		</script>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}
