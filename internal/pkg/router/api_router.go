package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/BrewPassApp/BrewPass/app/controllers"
	"github.com/BrewPassApp/BrewPass/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")

	// Auth (no token required)
	v1.Post("/auth/signup", controllers.HandleAPISignup)
	v1.Post("/auth/login", controllers.HandleAPILogin)

	// Payment provider webhooks (no token, signature-verified in controller)
	v1.Post("/payments/webhook", controllers.HandleAPIPaymentWebhook)

	// Member routes (bearer token)
	member := v1.Group("", middleware.RequireAPIToken)
	member.Get("/profile", controllers.HandleAPIProfile)
	member.Get("/plans", controllers.HandleAPIPlans)
	member.Get("/subscriptions", controllers.HandleAPIListSubscriptions)
	member.Post("/subscriptions", controllers.HandleAPISubscribe)
	member.Delete("/subscriptions/:id", controllers.HandleAPICancelSubscription)
	member.Get("/redeem", controllers.HandleAPIRedeemOverview)
	member.Post("/redeem", controllers.HandleAPICreateRedemption)

	// Admin routes (bearer token + admin role)
	admin := v1.Group("/admin", middleware.RequireAPIToken, middleware.RequireAPIAdmin)
	admin.Get("/users", controllers.HandleAPIAdminUsers)
	admin.Get("/redeem", controllers.HandleAPIAdminRedemptions)
	admin.Patch("/redeem/:id", controllers.HandleAPIAdminRedemptionDecision)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
