package backend

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nekoden/nekoden/backend/handlers"
	"github.com/nekoden/nekoden/backend/middleware"
	"github.com/nekoden/nekoden/backend/utils"
)

// NewApp builds the Fiber application serving the REST surface.
func NewApp(webApp *handlers.WebApp, allowOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "nekoden",
		ErrorHandler:          middleware.CustomErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             64 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	origins := "*"
	if len(allowOrigins) > 0 {
		origins = strings.Join(allowOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
	}))

	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp)
	return app
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "nekoden API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	api := app.Group("/api", middleware.APIRateLimit())

	petRoutes := api.Group("/pet")
	petRoutes.Get("/state", handlers.PetState(webApp))
	petRoutes.Get("/logs", handlers.PetLogs(webApp))

	rewardRoutes := api.Group("/rewards", middleware.AuthRequired(webApp.Verifier))
	rewardRoutes.Post("/spin", handlers.SpinReward(webApp))
	rewardRoutes.Get("/history", handlers.SpinHistory(webApp))
	rewardRoutes.Get("/cooldown", handlers.SpinCooldown(webApp))
	rewardRoutes.Get("/active", handlers.ActiveRewards(webApp))
	rewardRoutes.Get("/avatar", handlers.ActiveAvatar(webApp))
	rewardRoutes.Post("/cleanup", handlers.CleanupRewards(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}
