package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/imaginify/user-service/database"
	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/internal/services"
	"github.com/imaginify/user-service/restapi/modules/clerk"
	"github.com/imaginify/user-service/util"
)

var logger = database.Logger().Sugar()

// Handle returns the webhook endpoint handler. Each delivery is verified,
// dispatched on its event type and answered synchronously; the provider's
// own retry policy is the only recovery mechanism.
func Handle(store services.UserStore, clerkClient *clerk.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := util.GetEnvDefault("CLERK_WEBHOOK_SECRET", "")
		if util.IsEmpty(secret) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "CLERK_WEBHOOK_SECRET is not set",
			})
		}

		svixID := c.Get("svix-id")
		svixTimestamp := c.Get("svix-timestamp")
		svixSignature := c.Get("svix-signature")

		if util.IsEmpty(svixID) || util.IsEmpty(svixTimestamp) || util.IsEmpty(svixSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required headers",
			})
		}

		wh, err := svix.NewWebhook(secret)
		if err != nil {
			logger.Errorf("Invalid webhook secret: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "CLERK_WEBHOOK_SECRET is not valid",
			})
		}

		payload := c.Body()
		headers := http.Header{}
		headers.Set("svix-id", svixID)
		headers.Set("svix-timestamp", svixTimestamp)
		headers.Set("svix-signature", svixSignature)

		if err := wh.Verify(payload, headers); err != nil {
			logger.Errorf("Error verifying webhook: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to verify webhook",
			})
		}

		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			logger.Errorf("Error decoding webhook envelope: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid webhook payload",
			})
		}

		switch evt.Type {
		case EventUserCreated:
			return handleUserCreated(c, store, clerkClient, evt.Data)
		case EventUserUpdated:
			return handleUserUpdated(c, store, evt.Data)
		case EventUserDeleted:
			return handleUserDeleted(c, store, evt.Data)
		default:
			// Acknowledge unknown event types so the provider stops
			// redelivering them.
			var subject struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(evt.Data, &subject)
			logger.Infof("Webhook with an ID of %s and type of %s", subject.ID, evt.Type)
			logger.Infof("Webhook body: %s", payload)
			return c.Status(fiber.StatusOK).Send(nil)
		}
	}
}

func handleUserCreated(c *fiber.Ctx, store services.UserStore, clerkClient *clerk.Client, data json.RawMessage) error {
	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		logger.Errorf("Error decoding user.created data: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	newUser, err := store.Create(c.Context(), userData.ToUser())
	if err != nil {
		logger.Errorf("Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	// Compensating write: push the internal id back into the provider's
	// metadata so both systems stay linked. No rollback if it fails after
	// the local record was created.
	if err := clerkClient.UpdateUserMetadata(c.Context(), userData.ID, map[string]interface{}{
		"userId": newUser.Key,
	}); err != nil {
		logger.Errorf("Error updating clerk metadata for %s: %v", userData.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	return c.JSON(fiber.Map{"message": "OK", "user": newUser})
}

func handleUserUpdated(c *fiber.Ctx, store services.UserStore, data json.RawMessage) error {
	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		logger.Errorf("Error decoding user.updated data: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	updatedUser, err := store.Update(c.Context(), userData.ID, userData.ToUpdate())
	if err != nil {
		logger.Errorf("Error updating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	return c.JSON(fiber.Map{"message": "OK", "user": updatedUser})
}

func handleUserDeleted(c *fiber.Ctx, store services.UserStore, data json.RawMessage) error {
	var deletedData DeletedData
	if err := json.Unmarshal(data, &deletedData); err != nil {
		logger.Errorf("Error decoding user.deleted data: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	deletedUser, err := store.Delete(c.Context(), deletedData.ID)
	if err != nil {
		// Redelivered deletions are acknowledged idempotently.
		if errors.Is(err, apperror.ErrNotFound) {
			return c.JSON(fiber.Map{"message": "OK", "user": nil})
		}
		logger.Errorf("Error deleting user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	return c.JSON(fiber.Map{"message": "OK", "user": deletedUser})
}
