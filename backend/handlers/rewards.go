package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nekoden/nekoden/backend/models"
	"github.com/nekoden/nekoden/backend/utils"
	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/nekoden/config"
)

func SpinReward(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req models.SpinRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if strings.TrimSpace(req.Reward) == "" {
			return utils.SendBadRequest(c, "Reward is required", nil)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		result, err := webApp.Rewards.Spin(ctx, id.UserID, req.Reward)
		if err != nil {
			var cooldown *rewards.CooldownError
			var unknown *rewards.UnknownPrizeError
			switch {
			case errors.As(err, &cooldown):
				return utils.SendTooManyRequests(c, "COOLDOWN_ACTIVE", "Please wait before spinning again",
					map[string]any{"remaining": cooldown.RemainingSeconds})
			case errors.As(err, &unknown):
				return utils.SendError(c, fiber.StatusBadRequest, "UNKNOWN_PRIZE", unknown.Error(),
					map[string]any{"suggestions": nonNil(unknown.Suggestions)})
			}
			slog.Error("Failed to record spin",
				slog.String("type", "error"),
				slog.String("user_id", id.UserID),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to record spin")
		}

		return utils.SendSuccess(c, result, "Spin recorded")
	}
}

func SpinHistory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		spins, err := webApp.Rewards.History(ctx, id.UserID)
		if err != nil {
			slog.Error("Failed to load spin history",
				slog.String("type", "error"),
				slog.String("user_id", id.UserID),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to load spin history")
		}
		return utils.SendSuccess(c, nonNil(spins), "")
	}
}

func SpinCooldown(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		status, err := webApp.Rewards.Cooldown(ctx, id.UserID)
		if err != nil {
			slog.Error("Failed to check spin cooldown",
				slog.String("type", "error"),
				slog.String("user_id", id.UserID),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to check cooldown")
		}
		return utils.SendSuccess(c, status, "")
	}
}

func ActiveRewards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		active, err := webApp.Ledger.ListActive(ctx, id.UserID)
		if err != nil {
			slog.Error("Failed to list active rewards",
				slog.String("type", "error"),
				slog.String("user_id", id.UserID),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to load active rewards")
		}

		views := make(map[string]models.ActiveRewardView, len(active))
		for _, r := range active {
			views[r.RewardType] = models.ActiveRewardView{Value: r.Value, ExpiresAt: r.ExpiresAt}
		}
		return utils.SendSuccess(c, views, "")
	}
}

func ActiveAvatar(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		return utils.SendSuccess(c, webApp.Ledger.ActiveAvatar(ctx, id.UserID), "")
	}
}

// CleanupRewards never fails the caller; a storage error is logged and the
// periodic sweep picks the rows up later.
func CleanupRewards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := utils.ExtractIdentity(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), config.DefaultQueryTimeout)
		defer cancel()

		removed, err := webApp.Ledger.CleanupExpired(ctx, id.UserID)
		if err != nil {
			slog.Warn("Reward cleanup failed",
				slog.String("type", "error"),
				slog.String("user_id", id.UserID),
				slog.Any("error", err))
			return utils.SendSuccess(c, models.CleanupResult{}, "cleanup will retry later")
		}
		return utils.SendSuccess(c, models.CleanupResult{Removed: removed}, "Expired rewards cleaned up")
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
