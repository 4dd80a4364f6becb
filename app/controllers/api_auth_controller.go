package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/database"
	"github.com/BrewPassApp/BrewPass/internal/pkg/token"
)

// ErrorCodeAccessDenied is returned in error bodies when a request is
// rejected for authorization-style reasons, including duplicate signups.
const ErrorCodeAccessDenied = "ERROR_CODE_ACCESS_DENIED"

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func apiError(c *fiber.Ctx, status int, message, code string) error {
	body := fiber.Map{"message": message}
	if code != "" {
		body["code"] = code
	}
	return c.Status(status).JSON(body)
}

// HandleAPISignup registers a new customer account.
func HandleAPISignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return apiError(c, fiber.StatusBadRequest, "Email already registered", ErrorCodeAccessDenied)
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error(), "")
	}

	if err := repo.Create(user); err != nil {
		// Unique index race: treat as duplicate signup.
		return apiError(c, fiber.StatusBadRequest, "Email already registered", ErrorCodeAccessDenied)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// HandleAPILogin verifies credentials and issues a bearer token.
func HandleAPILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body", "")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError(c, fiber.StatusUnauthorized, "Invalid email or password", "")
		}
		return apiError(c, fiber.StatusInternalServerError, "Failed to load user", "")
	}

	if !user.CheckPassword(req.Password) {
		return apiError(c, fiber.StatusUnauthorized, "Invalid email or password", "")
	}
	if !user.IsActive() {
		return apiError(c, fiber.StatusUnauthorized, "This account is not active", "")
	}

	signed, err := token.Issue(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, token.Secret(), token.DefaultTTL)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to issue token", "")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"authToken": signed,
		"role":      user.Role,
	})
}
