// Package main provides the headless automation runner. It executes one
// unattended run and exits, which suits cron-style hosting; the API binary
// owns long-lived scheduling.
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
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/otelhelper"
	"github.com/clipline/clipline/pkg/workflow"
)

func main() {
	logger := log.WithModule("automator")

	command := &cli.Command{
		Name:                  "clipline-automator",
		Usage:                 "Run one unattended automation batch",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "operator-id",
				Usage:    "Operator the run is attributed to",
				Required: true,
				Sources:  cli.EnvVars("OPERATOR_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
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
				Name:     "sheet-service-url",
				Usage:    "Base URL of the sheet gateway",
				Required: true,
				Sources:  cli.EnvVars("SHEET_SERVICE_URL"),
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
			&cli.IntFlag{
				Name:  "items-per-run",
				Usage: "Maximum items to process in this run",
				Value: 3,
			},
			&cli.StringFlag{
				Name:  "sheet-ref",
				Usage: "Sheet the items are discovered from",
			},
			&cli.StringFlag{
				Name:  "upload-mode",
				Usage: "publish or stage_only",
				Value: string(models.UploadModeStageOnly),
			},
			&cli.StringFlag{
				Name:  "privacy-status",
				Usage: "Privacy of published videos (public, unlisted, private)",
				Value: "private",
			},
			&cli.StringFlag{
				Name:  "template-mode",
				Usage: "latest_workflow or pinned",
				Value: string(models.TemplateModeLatestWorkflow),
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

			tracerProvider, err := otelhelper.InitTracer(ctx, "clipline-automator")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Starting automation run",
				"operator_id", command.String("operator-id"))

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

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

			workflows := workflow.NewService(persistence, generator, renderer, nil, logger)
			runner := automation.NewRunner(persistence, workflows, source, uploader, nil, logger)

			config := models.ScheduleConfig{
				OperatorID:    command.String("operator-id"),
				ItemsPerRun:   command.Int("items-per-run"),
				SheetRef:      command.String("sheet-ref"),
				UploadMode:    models.UploadMode(command.String("upload-mode")),
				PrivacyStatus: command.String("privacy-status"),
				TemplateMode:  models.TemplateMode(command.String("template-mode")),
			}

			if err := runner.StartRun(ctx, config); err != nil {
				logger.ErrorContext(ctx, "Automation run failed", "error", err)

				return err
			}

			state := runner.State()
			logger.InfoContext(ctx, "Automation run finished",
				"processed", state.Counts.Processed,
				"uploaded", state.Counts.Uploaded,
				"failed", state.Counts.Failed)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
