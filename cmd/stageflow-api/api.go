// Package main provides the Stageflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/persistence"
	"github.com/stageflow/stageflow/pkg/registry"
	"github.com/stageflow/stageflow/pkg/services"
	"github.com/stageflow/stageflow/pkg/web"
	"github.com/stageflow/stageflow/pkg/workflow"
)

type API struct {
	logger       *slog.Logger
	persistence  persistence.Persistence
	registry     *registry.Registry
	orchestrator *workflow.Orchestrator
	eventBus     eventbus.EventBus
	validate     *validator.Validate
	workerID     string
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	orchestrator *workflow.Orchestrator,
	eventBus eventbus.EventBus,
	workerID string,
) *API {
	return &API{
		persistence:  persistence,
		logger:       logger,
		registry:     registry,
		orchestrator: orchestrator,
		eventBus:     eventBus,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		workerID:     workerID,
	}
}

func (a *API) App() *fiber.App {
	actionService := services.NewAction(
		a.persistence.ActionRepository(), a.registry, a.eventBus, a.logger, a.workerID)
	onboardingService := services.NewOnboarding(a.persistence.OnboardingRepository(), a.logger)

	handlers := web.NewAPIHandlers(actionService, onboardingService, a.orchestrator, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Stageflow API")
	})

	actions := app.Group("/actions")
	actions.Get("/", handlers.GetActions)
	actions.Post("/", handlers.CreateAction)
	actions.Get("/:id", handlers.GetAction)
	actions.Post("/:id/execute", handlers.ExecuteAction)
	actions.Get("/:id/executions", handlers.GetActionExecutions)

	onboardings := app.Group("/onboardings")
	onboardings.Get("/:id", handlers.GetOnboarding)
	onboardings.Post("/:id/stages/:stageId/complete", handlers.CompleteStage)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
