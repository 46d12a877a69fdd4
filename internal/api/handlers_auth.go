package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const (
	pinMinLength = 4
	pinMaxLength = 32
)

func (handler *Handler) AuthStatus(c *fiber.Ctx) error {
	_, configured, err := handler.preferences.Get(services.AccessPINHashKey)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load lock state")
	}
	return c.JSON(fiber.Map{"pin_configured": configured})
}

// SetPIN creates or replaces the owner PIN. Replacing an existing PIN
// goes through LockRequired, so only an unlocked session can change it.
func (handler *Handler) SetPIN(c *fiber.Ctx) error {
	payload := pinPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	pin := strings.TrimSpace(payload.PIN)
	if len(pin) < pinMinLength || len(pin) > pinMaxLength {
		return apiError(c, fiber.StatusBadRequest, "pin length out of range")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to hash pin")
	}
	if err := handler.preferences.Set(services.AccessPINHashKey, string(hash)); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to store pin")
	}

	if err := handler.setUnlockCookie(c); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to issue session")
	}
	return c.JSON(fiber.Map{"pin_configured": true})
}

func (handler *Handler) Unlock(c *fiber.Ctx) error {
	payload := pinPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	storedHash, configured, err := handler.preferences.Get(services.AccessPINHashKey)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load lock state")
	}
	if !configured {
		return c.JSON(fiber.Map{"unlocked": true})
	}

	pin := strings.TrimSpace(payload.PIN)
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pin)) != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid pin")
	}

	if err := handler.setUnlockCookie(c); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to issue session")
	}
	return c.JSON(fiber.Map{"unlocked": true})
}
