package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/database"
	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
	"github.com/BrewPassApp/BrewPass/internal/pkg/hcaptcha"
	"github.com/BrewPassApp/BrewPass/internal/pkg/session"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		user, err := repository.GetGlobalRepositories().User.GetByEmail(c.FormValue("email"))
		if err != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.CheckPassword(c.FormValue("password")) {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.IsActive() {
			fm["message"] = "This account is not active"

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(AUTH_KEY, true)
		sess.Set(USER_ID, user.ID)
		sess.Set(USER_NAME, user.Name)
		sess.Set(USER_ROLE, user.Role)
		sess.Set(USER_IS_ADMIN, user.IsAdmin())

		err = sess.Save()
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		database.GetDB().Model(user).Update("last_login_at", time.Now())

		fm = fiber.Map{
			"type":    "success",
			"message": "Welcome back! Enjoy your brew.",
		}

		return flash.WithSuccess(c, fm).Redirect("/")
	}

	return renderPage(c, "auth/login", fiber.Map{
		"Title": " | Login",
	})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "See you soon!",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		// Verify hCaptcha token when configured
		if hcaptcha.Enabled() {
			hcaptchaToken := c.FormValue("h-captcha-response")
			valid, err := hcaptcha.Verify(hcaptchaToken)
			if err != nil || !valid {
				errorMsg := "Captcha validation failed. Please try again."
				if err != nil && env.IsDev() {
					errorMsg = fmt.Sprintf("Captcha validation failed: %v", err)
				}

				fm := fiber.Map{
					"type":    "error",
					"message": errorMsg,
				}
				return flash.WithError(c, fm).Redirect("/register")
			}
		}

		// Create user after successful captcha validation
		user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		err = repository.GetGlobalRepositories().User.Create(user)
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": "Email already registered",
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		fm := fiber.Map{
			"type":    "success",
			"message": "Registration complete, you can log in now!",
		}

		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return renderPage(c, "auth/register", fiber.Map{
		"Title":           " | Register",
		"HCaptchaSitekey": env.GetEnv("HCAPTCHA_SITEKEY", ""),
	})
}
