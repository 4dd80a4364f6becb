package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/metrics/counter"
	"github.com/BrewPassApp/BrewPass/internal/pkg/usercontext"
)

const redemptionPageSize = 50

// HandleRedeem shows the redeemable balance and redemption history.
func HandleRedeem(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	svc := getLoyaltyService()

	subs, err := svc.ListSubscriptions(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load subscriptions")
	}

	redemptions, err := svc.ListRedemptions(c.Context(), userID, 0, redemptionPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load redemptions")
	}

	return renderPage(c, "redeem", fiber.Map{
		"Title":             " | Redeem",
		"RedeemableCredits": ledger.RedeemableCredits(subs),
		"CanRedeem":         ledger.CanCreateRedemption(subs),
		"Redemptions":       redemptions,
	})
}

// HandleCreateRedemption submits a redemption request. The charged credit
// is held until an admin decides.
func HandleCreateRedemption(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	red, err := getLoyaltyService().CreateRedemption(c.Context(), userID)
	if errors.Is(err, loyalty.ErrNoRedeemableCredit) {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "You have no redeemable credit. Gift credits can only be used in store.",
		}).Redirect("/redeem")
	}
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not create the redemption request",
		}).Redirect("/redeem")
	}

	if sub, err := getLoyaltyService().GetSubscription(c.Context(), red.SubscriptionID); err == nil && sub.PlanVariation != nil {
		_ = counter.AddVariationRedemption(sub.PlanVariation.ID)
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Redemption request submitted. Show the order code at the counter.",
	}).Redirect("/redeem")
}
