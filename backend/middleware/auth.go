package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nekoden/nekoden/backend/utils"
	"github.com/nekoden/nekoden/internal/identity"
)

type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// verified caller in the request locals.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return utils.SendUnauthorized(c, "Missing bearer token")
		}

		id, err := verifier.Verify(token)
		if err != nil {
			slog.Debug("Auth required: token rejected",
				slog.String("type", "http"),
				slog.String("ip", utils.GetIPAddress(c)),
				slog.Any("error", err))
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		c.Locals(utils.LocalsIdentity, id)
		return c.Next()
	}
}
