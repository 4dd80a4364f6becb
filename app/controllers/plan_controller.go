package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/metrics/counter"
	"github.com/BrewPassApp/BrewPass/internal/pkg/usercontext"
)

// planView is one purchasable variation with its eligibility for the
// current user.
type planView struct {
	Variation  models.PlanVariation
	ButtonText string
	Disabled   bool
}

// HandlePlans lists the purchasable plan variations. Each card carries a
// button caption reflecting the viewer's current subscriptions.
func HandlePlans(c *fiber.Ctx) error {
	variations, err := repository.GetGlobalRepositories().Plan.GetActiveVariations()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load plans")
	}

	var subs []models.Subscription
	if userID := usercontext.GetUserID(c); userID != 0 {
		subs, err = getLoyaltyService().ListSubscriptions(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load subscriptions")
		}
	}

	views := make([]planView, 0, len(variations))
	for _, v := range variations {
		_ = counter.AddVariationView(v.ID)
		views = append(views, planView{
			Variation:  v,
			ButtonText: buttonTextFor(subs, v),
			Disabled:   ledger.HasActiveSubscription(subs),
		})
	}

	return renderPage(c, "plans", fiber.Map{
		"Title": " | Plans",
		"Plans": views,
	})
}

// buttonTextFor mirrors the subscribe button captions: exact plan match
// wins over the generic already-subscribed caption.
func buttonTextFor(subs []models.Subscription, v models.PlanVariation) string {
	e := ledger.EligibilityForVariation(subs, v)
	switch e.State {
	case ledger.AlreadySubscribedToThis:
		return "Already Subscribed"
	case ledger.AlreadySubscribedToOther:
		return fmt.Sprintf("Already have: %s", e.CurrentPlanName)
	default:
		return "Subscribe Now"
	}
}

// HandleSubscribe collects payment for a plan variation and activates the
// subscription.
func HandleSubscribe(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	variationID := c.FormValue("variation_id")
	cardSource := c.FormValue("card_source_id")

	fm := fiber.Map{
		"type": "error",
	}

	if variationID == "" || cardSource == "" {
		fm["message"] = "Please select a plan and a payment method"

		return flash.WithError(c, fm).Redirect("/plans")
	}

	_, err := getLoyaltyService().Subscribe(c.Context(), userID, variationID, cardSource)
	switch {
	case errors.Is(err, loyalty.ErrAlreadySubscribed):
		fm["message"] = "You already have an active subscription for this plan"

		return flash.WithError(c, fm).Redirect("/plans")
	case errors.Is(err, loyalty.ErrOtherActiveSubscription):
		fm["message"] = "You already have an active subscription for another plan"

		return flash.WithError(c, fm).Redirect("/plans")
	case err != nil:
		fm["message"] = "Payment failed. No charge was made."

		return flash.WithError(c, fm).Redirect("/plans")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Subscription active. Your credits are ready!",
	}

	return flash.WithSuccess(c, fm).Redirect("/")
}

// HandleCancelSubscription marks an owned subscription cancelled. Remaining
// credits stay usable.
func HandleCancelSubscription(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	subID, err := c.ParamsInt("id")
	if err != nil || subID <= 0 {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Unknown subscription",
		}).Redirect("/")
	}

	_, err = getLoyaltyService().CancelSubscription(c.Context(), userID, uint(subID))
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not cancel the subscription",
		}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Subscription cancelled. Remaining credits stay on your account.",
	}).Redirect("/")
}
