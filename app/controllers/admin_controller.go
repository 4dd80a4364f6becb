package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
)

const adminPageSize = 100

// HandleAdminDashboard shows operational counts for the admin area.
func HandleAdminDashboard(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	userCount, err := repos.User.Count()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
	}
	activeSubs, err := repos.Subscription.CountByStatus(models.SubscriptionStatusActive)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
	}
	pendingRedemptions, err := repos.Redemption.CountByStatus(models.RedemptionStatusPending)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
	}

	return renderPage(c, "admin/dashboard", fiber.Map{
		"Title":              " | Admin",
		"UserCount":          userCount,
		"ActiveSubs":         activeSubs,
		"PendingRedemptions": pendingRedemptions,
	})
}

// HandleAdminUsers lists users with subscription and credit statistics.
func HandleAdminUsers(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	query := c.Query("q")
	if query != "" {
		users, err := repos.User.Search(query)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not search users")
		}
		return renderPage(c, "admin/users", fiber.Map{
			"Title": " | Admin Users",
			"Users": users,
			"Query": query,
		})
	}

	usersWithStats, err := repos.User.GetWithStats(0, adminPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load users")
	}

	return renderPage(c, "admin/users", fiber.Map{
		"Title":          " | Admin Users",
		"UsersWithStats": usersWithStats,
	})
}

// HandleAdminRedemptions lists redemption requests across all users so
// staff can work the pending queue.
func HandleAdminRedemptions(c *fiber.Ctx) error {
	items, err := getLoyaltyService().ListAllRedemptions(c.Context(), 0, adminPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load redemptions")
	}

	return renderPage(c, "admin/redemptions", fiber.Map{
		"Title":       " | Admin Redemptions",
		"Redemptions": items,
	})
}

// HandleAdminRedemptionDecision approves or rejects a pending redemption.
func HandleAdminRedemptionDecision(c *fiber.Ctx) error {
	redemptionID, err := c.ParamsInt("id")
	if err != nil || redemptionID <= 0 {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Unknown redemption",
		}).Redirect("/admin/redemptions")
	}

	decision := c.FormValue("decision")
	if decision != "approve" && decision != "reject" {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Decision must be approve or reject",
		}).Redirect("/admin/redemptions")
	}

	red, err := getLoyaltyService().DecideRedemption(c.Context(), uint(redemptionID), decision == "approve")
	if errors.Is(err, loyalty.ErrRedemptionNotPending) {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "This redemption was already decided",
		}).Redirect("/admin/redemptions")
	}
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not update the redemption",
		}).Redirect("/admin/redemptions")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Redemption " + red.OrderID + " " + red.Status,
	}).Redirect("/admin/redemptions")
}
