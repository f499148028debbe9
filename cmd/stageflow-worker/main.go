package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/stageflow/stageflow/pkg/cmd"
	"github.com/stageflow/stageflow/pkg/executors/email"
	"github.com/stageflow/stageflow/pkg/log"
	"github.com/stageflow/stageflow/pkg/otelhelper"
	"github.com/stageflow/stageflow/pkg/services"
	"github.com/stageflow/stageflow/pkg/workflow"
)

func main() {
	command := &cli.Command{
		Name:                  "stageflow-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to execute onboarding actions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, memory)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "sandbox-url",
				Usage:    "Base URL of the remote code execution service",
				Required: true,
				Sources:  cli.EnvVars("SANDBOX_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for distributed stage completion locks",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP server host for email actions",
				Sources: cli.EnvVars("SMTP_HOST"),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Usage:   "SMTP server port",
				Value:   587,
				Sources: cli.EnvVars("SMTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Sources: cli.EnvVars("SMTP_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Sources: cli.EnvVars("SMTP_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "smtp-from",
				Usage:   "From address for email actions",
				Sources: cli.EnvVars("SMTP_FROM"),
			},
			&cli.StringFlag{
				Name:    "repair-schedule",
				Usage:   "Cron schedule for the stage progress repair sweep",
				Value:   "@every 10m",
				Sources: cli.EnvVars("REPAIR_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing for action dispatch",
				Value:   false,
				Sources: cli.EnvVars("TRACING_ENABLED"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("stageflow-worker").With("workerId", workerID)

			logger.InfoContext(ctx, "Initializing Stageflow Worker")

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			onboardingService := services.NewOnboarding(persistence.OnboardingRepository(), logger)

			orchestrator := workflow.NewOrchestrator(
				onboardingService,
				onboardingService,
				cmd.NewLocker(command.String("redis-url")),
				logger,
			).WithPublisher(eventBus)

			registry := cmd.NewRegistry(logger, orchestrator, cmd.ExecutorConfig{
				SandboxURL: command.String("sandbox-url"),
				SMTP: email.SMTPConfig{
					Host:     command.String("smtp-host"),
					Port:     command.Int("smtp-port"),
					Username: command.String("smtp-username"),
					Password: command.String("smtp-password"),
					From:     command.String("smtp-from"),
				},
			})

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "stageflow-worker")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				registry = registry.WithTracer(tracer)
			}

			actionService := services.NewAction(
				persistence.ActionRepository(), registry, eventBus, logger, workerID)

			sweeper := workflow.NewSweeper(
				orchestrator, onboardingService, command.String("repair-schedule"), logger)

			worker := NewWorkerManager(workerID, actionService, eventBus, sweeper, logger)

			if err := worker.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to start event-driven worker", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
