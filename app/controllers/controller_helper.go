package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
	"github.com/BrewPassApp/BrewPass/internal/pkg/usercontext"
)

const (
	AUTH_KEY       string = usercontext.AuthKey
	USER_ID        string = usercontext.KeyUserID
	USER_NAME      string = usercontext.KeyUsername
	USER_ROLE      string = usercontext.KeyUserRole
	USER_IS_ADMIN  string = usercontext.KeyIsAdmin
	FROM_PROTECTED string = usercontext.KeyFromProtected
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// renderPage renders a view with the shared layout data every page needs:
// flash message, login state and dev flag. Page-specific data goes in bind.
func renderPage(c *fiber.Ctx, view string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}

	userCtx := usercontext.GetUserContext(c)
	bind["FromProtected"] = userCtx.IsLoggedIn
	bind["Username"] = userCtx.Username
	bind["IsAdmin"] = userCtx.IsAdmin
	bind["IsDev"] = env.IsDev()

	if csrfToken, ok := c.Locals("csrf").(string); ok {
		bind["Csrf"] = csrfToken
	}

	if fm := flash.Get(c); len(fm) > 0 {
		bind["FlashType"] = fm["type"]
		bind["FlashMessage"] = fm["message"]
	}

	return c.Render(view, bind, "layouts/main")
}
