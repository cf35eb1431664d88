package handlers

import (
	"errors"

	"taxgate/internal/models"
	"taxgate/internal/services/user"
	"taxgate/internal/utils"
	"taxgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a bank account on the portal. Role requests in the
// payload are ignored; only administrators provision other roles.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.Role = models.RoleBank

	usr, err := h.userService.Register(&input)
	if err != nil {
		if ve, ok := user.IsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Fields)
		}
		if errors.Is(err, user.ErrEmailTaken) {
			return response.Conflict(c, "An account with this email already exists")
		}
		return response.ServerError(c, "Failed to create account")
	}

	return response.Created(c, "Account created", fiber.Map{
		"id":        usr.ID,
		"email":     usr.Email,
		"name":      usr.Name,
		"role":      usr.Role,
		"bank_name": usr.BankName,
		"bank_code": usr.BankCode,
	})
}

// Profile returns the authenticated user's account details
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	usr, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "Profile", fiber.Map{
		"id":              usr.ID,
		"email":           usr.Email,
		"name":            usr.Name,
		"phone":           usr.Phone,
		"role":            usr.Role,
		"status":          usr.Status,
		"bank_name":       usr.BankName,
		"bank_code":       usr.BankCode,
		"contact_address": usr.ContactAddress,
		"created_at":      usr.CreatedAt,
	})
}
