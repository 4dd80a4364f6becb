package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

type subscribeRequest struct {
	PlanVariationID string `json:"plan_variation_id"`
	CardSourceID    string `json:"card_source_id"`
}

// HandleAPIListSubscriptions returns the user's subscriptions and credit totals.
func HandleAPIListSubscriptions(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)

	subs, err := getLoyaltyService().ListSubscriptions(c.Context(), claims.UserID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load subscriptions", "")
	}

	return c.JSON(fiber.Map{
		"subscriptions": subs,
		"credits": fiber.Map{
			"total":      ledger.TotalCredits(subs),
			"subscriber": ledger.SubscriberCredits(subs),
			"guest":      ledger.GuestCredits(subs),
			"redeemable": ledger.RedeemableCredits(subs),
		},
	})
}

// HandleAPISubscribe collects payment and activates a subscription.
func HandleAPISubscribe(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)

	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body", "")
	}
	if req.PlanVariationID == "" || req.CardSourceID == "" {
		return apiError(c, fiber.StatusBadRequest, "plan_variation_id and card_source_id are required", "")
	}

	sub, err := getLoyaltyService().Subscribe(c.Context(), claims.UserID, req.PlanVariationID, req.CardSourceID)
	switch {
	case errors.Is(err, loyalty.ErrAlreadySubscribed):
		return apiError(c, fiber.StatusConflict, "An active subscription for this plan already exists", "")
	case errors.Is(err, loyalty.ErrOtherActiveSubscription):
		return apiError(c, fiber.StatusConflict, "An active subscription for another plan already exists", "")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apiError(c, fiber.StatusNotFound, "Unknown plan variation", "")
	case err != nil:
		return apiError(c, fiber.StatusBadGateway, "Payment failed. No charge was made.", "")
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleAPICancelSubscription cancels an owned subscription. Remaining
// credits stay usable.
func HandleAPICancelSubscription(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)

	subID, err := c.ParamsInt("id")
	if err != nil || subID <= 0 {
		return apiError(c, fiber.StatusBadRequest, "Invalid subscription id", "")
	}

	sub, err := getLoyaltyService().CancelSubscription(c.Context(), claims.UserID, uint(subID))
	switch {
	case errors.Is(err, loyalty.ErrNotOwned):
		return apiError(c, fiber.StatusForbidden, "Subscription does not belong to this user", "")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apiError(c, fiber.StatusNotFound, "Subscription not found", "")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "Failed to cancel subscription", "")
	}

	return c.JSON(sub)
}
