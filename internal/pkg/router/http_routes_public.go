package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/app/controllers"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Static pages
	app.Get("/about", loggedInMiddleware, controllers.HandleAbout)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
}
