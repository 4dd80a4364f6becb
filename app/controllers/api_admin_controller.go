package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
)

type redemptionDecisionRequest struct {
	Status string `json:"status"`
}

// HandleAPIAdminUsers lists users with subscription and credit statistics.
func HandleAPIAdminUsers(c *fiber.Ctx) error {
	usersWithStats, err := repository.GetGlobalFactory().GetUserRepository().GetWithStats(0, adminPageSize)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load users", "")
	}

	users := make([]fiber.Map, 0, len(usersWithStats))
	for _, u := range usersWithStats {
		users = append(users, fiber.Map{
			"id":                 u.User.ID,
			"name":               u.User.Name,
			"email":              u.User.Email,
			"role":               u.User.Role,
			"status":             u.User.Status,
			"subscription_count": u.SubscriptionCount,
			"redemption_count":   u.RedemptionCount,
			"total_credit":       u.TotalCredit,
		})
	}

	return c.JSON(fiber.Map{"users": users})
}

// HandleAPIAdminRedemptions lists redemption requests across all users.
func HandleAPIAdminRedemptions(c *fiber.Ctx) error {
	items, err := getLoyaltyService().ListAllRedemptions(c.Context(), 0, adminPageSize)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load redemptions", "")
	}

	redemptions := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		redemptions = append(redemptions, fiber.Map{
			"id":                  item.Redemption.ID,
			"order_id":            item.Redemption.OrderID,
			"status":              item.Redemption.Status,
			"charged_credit":      item.Redemption.ChargedCredit,
			"plan_variation_name": item.Redemption.PlanVariationName,
			"created_at":          item.Redemption.CreatedAt,
			"user_name":           item.UserName,
			"user_email":          item.UserEmail,
		})
	}

	return c.JSON(fiber.Map{"redemptions": redemptions})
}

// HandleAPIAdminRedemptionDecision approves or rejects a pending redemption.
func HandleAPIAdminRedemptionDecision(c *fiber.Ctx) error {
	redemptionID, err := c.ParamsInt("id")
	if err != nil || redemptionID <= 0 {
		return apiError(c, fiber.StatusBadRequest, "Invalid redemption id", "")
	}

	var req redemptionDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "approved" && status != "rejected" {
		return apiError(c, fiber.StatusBadRequest, "status must be approved or rejected", "")
	}

	red, err := getLoyaltyService().DecideRedemption(c.Context(), uint(redemptionID), status == "approved")
	switch {
	case errors.Is(err, loyalty.ErrRedemptionNotPending):
		return apiError(c, fiber.StatusConflict, "Redemption was already decided", "")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apiError(c, fiber.StatusNotFound, "Redemption not found", "")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "Failed to update redemption", "")
	}

	return c.JSON(red)
}
