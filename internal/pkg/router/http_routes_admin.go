package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/app/controllers"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/users", controllers.HandleAdminUsers)

	// Redemption queue
	adminGroup.Get("/redemptions", controllers.HandleAdminRedemptions)
	adminGroup.Post("/redemptions/:id/decide", controllers.HandleAdminRedemptionDecision)
}
