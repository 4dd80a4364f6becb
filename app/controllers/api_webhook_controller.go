package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/payment"
)

// squareWebhookEvent is the subset of the Square event envelope we act on.
type squareWebhookEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			Subscription struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"subscription"`
		} `json:"object"`
	} `json:"data"`
}

// HandleAPIPaymentWebhook receives Square webhook notifications. Events are
// verified against the webhook signature key, stored idempotently, and
// subscription status changes are mirrored onto local records. Replays of
// an already-stored event are acknowledged without reprocessing.
func HandleAPIPaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()

	signatureKey := env.GetEnv("SQUARE_WEBHOOK_SIGNATURE_KEY", "")
	notificationURL := env.GetEnv("SQUARE_WEBHOOK_NOTIFICATION_URL", "")
	signature := c.Get("x-square-hmacsha256-signature")

	signatureValid := payment.VerifySquareWebhookSignature(body, notificationURL, signature, signatureKey)
	if signatureKey != "" && !signatureValid {
		return apiError(c, fiber.StatusUnauthorized, "Invalid webhook signature", "")
	}

	var event squareWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid webhook payload", "")
	}

	svc := getLoyaltyService()
	created, stored, err := svc.RecordWebhookEvent(c.Context(), loyalty.WebhookEventInput{
		Provider:        models.PaymentProviderSquare,
		ProviderEventID: event.EventID,
		EventType:       event.Type,
		PayloadJSON:     string(body),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to record webhook event", "")
	}
	if !created {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var processErr error
	if sub := event.Data.Object.Subscription; sub.ID != "" && sub.Status != "" {
		processErr = svc.ApplySubscriptionEvent(c.Context(), sub.ID, sub.Status)
	}
	_ = svc.MarkWebhookProcessed(c.Context(), stored.ID, processErr)

	if processErr != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to process webhook event", "")
	}
	return c.JSON(fiber.Map{"received": true})
}
