// Package web provides HTTP handlers and REST API endpoints for action
// dispatch and stage transitions.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/registry"
	"github.com/stageflow/stageflow/pkg/services"
	"github.com/stageflow/stageflow/pkg/workflow"
)

type APIHandlers struct {
	actionService     *services.Action
	onboardingService *services.Onboarding
	orchestrator      *workflow.Orchestrator
	validator         *validator.Validate
	registry          *registry.Registry
}

func NewAPIHandlers(
	actionService *services.Action,
	onboardingService *services.Onboarding,
	orchestrator *workflow.Orchestrator,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		actionService:     actionService,
		onboardingService: onboardingService,
		orchestrator:      orchestrator,
		validator:         validator,
		registry:          registry,
	}
}

func (h *APIHandlers) CreateAction(c fiber.Ctx) error {
	var req CreateActionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	definition := &models.ActionDefinition{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Config:      req.Config,
		Enabled:     req.Enabled,
		TenantID:    req.TenantID,
	}

	if err := h.actionService.CreateDefinition(c.Context(), definition); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(definition)
}

func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	definitions, err := h.actionService.ListDefinitions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"actions":     definitions,
		"total_count": len(definitions),
	})
}

func (h *APIHandlers) GetAction(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid action ID")
	}

	definition, err := h.actionService.GetDefinition(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(definition)
}

func (h *APIHandlers) ExecuteAction(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid action ID")
	}

	var req ExecuteActionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	trigger := models.NewTriggerContext(req.TriggerContext)

	execution, err := h.actionService.ExecuteAction(c.Context(), id, trigger)
	if err != nil && execution == nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetActionExecutions(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid action ID")
	}

	executions, err := h.actionService.ExecutionHistory(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetOnboarding(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid onboarding ID")
	}

	onboarding, err := h.onboardingService.GetOnboarding(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(onboarding)
}

func (h *APIHandlers) CompleteStage(c fiber.Ctx) error {
	onboardingID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid onboarding ID")
	}

	stageID, err := parseID(c, "stageId")
	if err != nil {
		return badRequest(c, "Invalid stage ID")
	}

	var req CompleteStageRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	autoMove := true
	if req.AutoMoveToNext != nil {
		autoMove = *req.AutoMoveToNext
	}

	op := &models.OperationContext{
		UserID:   req.UserID,
		UserName: req.UserName,
		TenantID: req.TenantID,
	}

	result, err := h.orchestrator.CompleteStage(c.Context(), op, workflow.CompleteStageRequest{
		OnboardingID:   onboardingID,
		StageID:        stageID,
		Notes:          req.Notes,
		AutoMoveToNext: autoMove,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	status := "unhealthy"
	message := "Stageflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk {
		status = "healthy"
		message = "Stageflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"executors": registryCheck,
		"timestamp": time.Now().UTC(),
	})
}

func parseID(c fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}
