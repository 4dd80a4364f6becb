package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/internal/pkg/token"
	"github.com/BrewPassApp/BrewPass/internal/pkg/usercontext"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}

// RequireAPIToken authenticates JSON API requests via a bearer token and
// stores the parsed claims in locals. Returns JSON 401 instead of a redirect.
func RequireAPIToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return unauthorized(c, "missing bearer token")
	}

	claims, err := token.Parse(header, token.Secret())
	if err != nil {
		return unauthorized(c, "invalid or expired token")
	}

	c.Locals(usercontext.KeyAPIClaims, claims)
	c.Locals(usercontext.KeyUserID, claims.UserID)
	c.Locals(usercontext.KeyUserRole, claims.Role)
	return c.Next()
}

// RequireAPIAdmin gates admin API routes on the bearer token role.
// Must run after RequireAPIToken.
func RequireAPIAdmin(c *fiber.Ctx) error {
	claims, ok := c.Locals(usercontext.KeyAPIClaims).(*token.Claims)
	if !ok {
		return unauthorized(c, "missing bearer token")
	}
	u := models.User{Role: claims.Role}
	if !u.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin role required",
		})
	}
	return c.Next()
}

// APIClaims returns the parsed token claims set by RequireAPIToken.
func APIClaims(c *fiber.Ctx) *token.Claims {
	claims, _ := c.Locals(usercontext.KeyAPIClaims).(*token.Claims)
	return claims
}
