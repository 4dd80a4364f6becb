package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

// HandleAPIRedeemOverview returns the redeemable balance and redemption history.
func HandleAPIRedeemOverview(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)
	svc := getLoyaltyService()

	subs, err := svc.ListSubscriptions(c.Context(), claims.UserID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load subscriptions", "")
	}

	redemptions, err := svc.ListRedemptions(c.Context(), claims.UserID, 0, redemptionPageSize)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load redemptions", "")
	}

	return c.JSON(fiber.Map{
		"redeemable_credits":    ledger.RedeemableCredits(subs),
		"can_create_redemption": ledger.CanCreateRedemption(subs),
		"redemptions":           redemptions,
	})
}

// HandleAPICreateRedemption submits a redemption request.
func HandleAPICreateRedemption(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)

	red, err := getLoyaltyService().CreateRedemption(c.Context(), claims.UserID)
	if errors.Is(err, loyalty.ErrNoRedeemableCredit) {
		return apiError(c, fiber.StatusBadRequest, "No redeemable credit available", "")
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to create redemption", "")
	}

	return c.Status(fiber.StatusCreated).JSON(red)
}
