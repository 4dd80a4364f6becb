package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

// HandleAPIProfile returns the authenticated user's account and credit totals.
func HandleAPIProfile(c *fiber.Ctx) error {
	claims := middleware.APIClaims(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError(c, fiber.StatusNotFound, "User not found", "")
		}
		return apiError(c, fiber.StatusInternalServerError, "Failed to load user", "")
	}

	subs, err := getLoyaltyService().ListSubscriptions(c.Context(), claims.UserID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load subscriptions", "")
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"role":          account.Role,
		"status":        account.Status,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"credits": fiber.Map{
			"total":      ledger.TotalCredits(subs),
			"subscriber": ledger.SubscriberCredits(subs),
			"guest":      ledger.GuestCredits(subs),
			"redeemable": ledger.RedeemableCredits(subs),
		},
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
