// Package users provides the REST handlers for user management.
package users

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/internal/services"
	"github.com/imaginify/user-service/model"
	"github.com/imaginify/user-service/util"
)

// GetUser looks a user up by external identity id.
func GetUser(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := store.GetByClerkID(c.Context(), c.Params("clerkId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(user)
	}
}

// ListUsers returns the newest users, bounded by ?limit.
func ListUsers(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		users, err := store.List(c.Context(), limit)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"users": users})
	}
}

// CreateUser inserts a new user record.
func CreateUser(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user model.User
		if err := c.BodyParser(&user); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if util.IsEmpty(user.ClerkID) || util.IsEmpty(user.Email) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "clerk_id and email are required",
			})
		}

		created, err := store.Create(c.Context(), user)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateUser applies a partial profile update.
func UpdateUser(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd model.UserUpdate
		if err := c.BodyParser(&upd); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if upd.IsEmpty() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No updatable fields supplied",
			})
		}

		updated, err := store.Update(c.Context(), c.Params("clerkId"), upd)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(updated)
	}
}

// DeleteUser removes a user and returns the removed record.
func DeleteUser(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := store.Delete(c.Context(), c.Params("clerkId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(deleted)
	}
}

// AddCredits adjusts the credit balance of the user with the given
// internal id by a relative delta.
func AddCredits(store services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if req.Delta == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "delta must be non-zero",
			})
		}

		updated, err := store.AddCredits(c.Context(), c.Params("key"), req.Delta)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(updated)
	}
}

// errorResponse maps the repository error taxonomy onto HTTP statuses.
// Unlike the webhook endpoint, the REST surface distinguishes 404 and 409.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperror.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperror.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
