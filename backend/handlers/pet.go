package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nekoden/nekoden/backend/models"
	"github.com/nekoden/nekoden/backend/utils"
	"github.com/nekoden/nekoden/nekoden/config"
)

func PetState(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		state, err := webApp.State.Current(ctx)
		if err != nil {
			slog.Error("Failed to read pet state",
				slog.String("type", "error"),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to read pet state")
		}
		return utils.SendSuccess(c, state.Snapshot(), "")
	}
}

// PetLogs returns recent action log entries, newest first. The service
// clamps limit to its own bounds.
func PetLogs(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", config.DefaultLogPageSize)

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		entries, err := webApp.Logs.Recent(ctx, limit)
		if err != nil {
			slog.Error("Failed to load action logs",
				slog.String("type", "error"),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to load logs")
		}
		return utils.SendSuccess(c, nonNil(entries), "")
	}
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := models.NewHealthCheck(webApp.Version)

		if webApp.Store == nil {
			health.AddComponent("store", "healthy", "in-memory")
		} else {
			ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
			defer cancel()
			if err := webApp.Store.Ping(ctx); err != nil {
				slog.Warn("Health check: store unreachable",
					slog.String("type", "db"),
					slog.Any("error", err))
				health.AddComponent("store", "unhealthy", err.Error())
			} else {
				health.AddComponent("store", "healthy", "")
			}
		}

		if health.Status != "healthy" {
			return utils.SendServiceUnavailable(c, health, "Health check failed")
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}
