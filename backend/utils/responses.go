package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nekoden/nekoden/backend/models"
	"github.com/nekoden/nekoden/internal/identity"
)

// LocalsIdentity is the fiber.Ctx locals key holding the verified caller.
const LocalsIdentity = "identity"

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data any, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]any) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

func SendBadRequest(c *fiber.Ctx, message string, details map[string]any) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func SendTooManyRequests(c *fiber.Ctx, code, message string, details map[string]any) error {
	return SendError(c, http.StatusTooManyRequests, code, message, details)
}

func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

func SendServiceUnavailable(c *fiber.Ctx, data any, message string) error {
	resp := models.NewErrorResponse("SERVICE_UNAVAILABLE", message, nil)
	resp.Data = data
	return SendJSON(c, http.StatusServiceUnavailable, resp)
}

// ExtractIdentity returns the caller stored by the auth middleware.
func ExtractIdentity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(identity.Identity)
	return id, ok
}

// GetIPAddress extracts the client IP address
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}

func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}
