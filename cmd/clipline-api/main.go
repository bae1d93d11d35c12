package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/clipline/clipline/pkg/automation"
	"github.com/clipline/clipline/pkg/clients"
	"github.com/clipline/clipline/pkg/cmd"
	"github.com/clipline/clipline/pkg/log"
	"github.com/clipline/clipline/pkg/otelhelper"
	"github.com/clipline/clipline/pkg/scheduler"
	"github.com/clipline/clipline/pkg/workflow"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "clipline-api",
		Usage:                 "Run the video production API and scheduler",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Optional Redis URL for the monitoring row store",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:     "content-service-url",
				Usage:    "Base URL of the content generation service",
				Required: true,
				Sources:  cli.EnvVars("CONTENT_SERVICE_URL"),
			},
			&cli.StringFlag{
				Name:     "render-service-url",
				Usage:    "Base URL of the render service",
				Required: true,
				Sources:  cli.EnvVars("RENDER_SERVICE_URL"),
			},
			&cli.StringFlag{
				Name:    "sheet-service-url",
				Usage:   "Base URL of the sheet gateway",
				Sources: cli.EnvVars("SHEET_SERVICE_URL"),
			},
			&cli.StringFlag{
				Name:    "video-host-url",
				Usage:   "Base URL of the video hosting gateway",
				Sources: cli.EnvVars("VIDEO_HOST_URL"),
			},
			&cli.StringFlag{
				Name:    "service-api-key",
				Usage:   "Bearer token sent to the external services",
				Sources: cli.EnvVars("SERVICE_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			tracerProvider, err := otelhelper.InitTracer(ctx, "clipline-api")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Initializing Clipline API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			persistence, err = cmd.WithRowStore(persistence, command.String("redis-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := subscribeLifecycleLog(ctx, eventBus, logger); err != nil {
				return err
			}

			apiKey := command.String("service-api-key")
			retry := clients.RetryConfig{Attempts: 3, Delay: 2 * time.Second}

			generator := clients.NewContentService(
				clients.NewClient(command.String("content-service-url"), apiKey, retry, logger))
			renderer := clients.NewRenderService(
				clients.NewClient(command.String("render-service-url"), apiKey, retry, logger))
			source := clients.NewSheetSource(
				clients.NewClient(command.String("sheet-service-url"), apiKey, retry, logger))
			uploader := clients.NewVideoHost(
				clients.NewClient(command.String("video-host-url"), apiKey, retry, logger))

			workflows := workflow.NewService(persistence, generator, renderer, eventBus, logger)
			runner := automation.NewRunner(persistence, workflows, source, uploader, eventBus, logger)
			sched := scheduler.NewScheduler(persistence, runner, logger)

			defer sched.Stop()

			api := NewAPI(logger, workflows, runner, sched)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
