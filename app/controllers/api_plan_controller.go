package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/app/repository"
)

// HandleAPIPlans returns the purchasable catalog: plans and their active
// variations in two parallel lists.
func HandleAPIPlans(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPlanRepository()

	plans, err := repo.GetActive()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load plans", "")
	}

	variations, err := repo.GetActiveVariations()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load plan variations", "")
	}

	return c.JSON(fiber.Map{
		"subscription_plans": plans,
		"plan_variations":    variations,
	})
}
