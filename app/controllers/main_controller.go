package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/usercontext"
)

// HandleStart renders the landing page, or the member dashboard for
// logged-in users.
func HandleStart(c *fiber.Ctx) error {
	if !isLoggedIn(c) {
		return renderPage(c, "index", fiber.Map{
			"Title": "",
		})
	}

	return HandleDashboard(c)
}

// HandleDashboard shows the member's credit balances and subscriptions.
// Totals are status-agnostic: cancelled subscriptions keep their balances.
func HandleDashboard(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	subs, err := getLoyaltyService().ListSubscriptions(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load subscriptions")
	}

	return renderPage(c, "dashboard", fiber.Map{
		"Title":             " | Dashboard",
		"Subscriptions":     subs,
		"TotalCredits":      ledger.TotalCredits(subs),
		"SubscriberCredits": ledger.SubscriberCredits(subs),
		"GuestCredits":      ledger.GuestCredits(subs),
		"CanRedeem":         ledger.CanCreateRedemption(subs),
	})
}

// HandleAbout renders the static about page.
func HandleAbout(c *fiber.Ctx) error {
	return renderPage(c, "about", fiber.Map{
		"Title": " | About",
	})
}
