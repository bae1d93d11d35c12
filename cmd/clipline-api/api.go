// Package main provides the clipline API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/clipline/clipline/pkg/automation"
	"github.com/clipline/clipline/pkg/scheduler"
	"github.com/clipline/clipline/pkg/web"
	"github.com/clipline/clipline/pkg/workflow"
)

type API struct {
	logger    *slog.Logger
	workflows *workflow.Service
	runner    *automation.Runner
	scheduler *scheduler.Scheduler
	validate  *validator.Validate
}

func NewAPI(
	log *slog.Logger,
	workflows *workflow.Service,
	runner *automation.Runner,
	sched *scheduler.Scheduler,
) *API {
	return &API{
		logger:    log,
		workflows: workflows,
		runner:    runner,
		scheduler: sched,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.workflows, a.runner, a.scheduler, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Clipline API")
	})

	// Arm each operator's persisted schedule the first time they show up.
	app.Use(func(c fiber.Ctx) error {
		if operatorID := c.Get(web.OperatorHeader); operatorID != "" {
			if err := a.scheduler.EnsureStarted(c.Context(), operatorID); err != nil {
				a.logger.WarnContext(c.Context(), "Failed to arm schedule",
					"operator_id", operatorID, "error", err)
			}
		}

		return c.Next()
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
