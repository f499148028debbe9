// Package services provides action dispatch and onboarding business operations.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/events"
	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
	"github.com/stageflow/stageflow/pkg/registry"
)

// Action loads definitions, dispatches them through the registry and keeps
// the execution audit trail. Each dispatch is recorded as running before the
// executor is invoked and finalized with the result afterwards, so a crashed
// worker leaves a visible running record instead of losing the attempt.
type Action struct {
	actions   persistence.ActionRepository
	registry  *registry.Registry
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	workerID  string
	now       func() time.Time
}

func NewAction(
	actions persistence.ActionRepository,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	workerID string,
) *Action {
	return &Action{
		actions:   actions,
		registry:  reg,
		publisher: publisher,
		logger:    logger.With("module", "action_service"),
		workerID:  workerID,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, used by tests.
func (s *Action) WithClock(now func() time.Time) *Action {
	s.now = now

	return s
}

// ExecuteAction runs one configured action against a trigger context and
// returns the finalized execution record.
func (s *Action) ExecuteAction(ctx context.Context, actionID int64, trigger *models.TriggerContext) (*models.ActionExecution, error) {
	if actionID <= 0 {
		return nil, NewValidationError("ExecuteAction", "invalid_request",
			fmt.Sprintf("invalid action id %d", actionID), ErrInvalidRequest)
	}

	definition, err := s.actions.GetDefinition(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action %d: %w", actionID, err)
	}

	if !definition.Enabled {
		return nil, &ServiceError{
			Op: "ExecuteAction", Code: "action_disabled",
			Message: fmt.Sprintf("action %d is disabled", actionID),
			Err:     ErrActionDisabled,
		}
	}

	if err := s.registry.ValidateConfig(definition.Type, definition.Config); err != nil {
		return nil, &ServiceError{
			Op: "ExecuteAction", Code: "invalid_config",
			Message: err.Error(),
			Err:     ErrInvalidConfig,
		}
	}

	started := s.now()

	execution := &models.ActionExecution{
		ID:             uuid.New().String(),
		ActionID:       definition.ID,
		ActionName:     definition.Name,
		ActionType:     definition.Type,
		Status:         models.ExecutionStatusRunning,
		TriggerContext: trigger.Fields(),
		StartedAt:      started,
	}

	if err := s.actions.SaveExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to record execution start: %w", err)
	}

	s.publishStarted(ctx, definition, execution)

	result, execErr := s.registry.Dispatch(ctx, definition.Type, definition.Config, trigger)

	completed := s.now()
	execution.CompletedAt = &completed

	if execErr != nil {
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = execErr.Error()
	} else {
		execution.Result = result
		execution.Status = models.ExecutionStatusCompleted

		if !result.Success {
			execution.Status = models.ExecutionStatusFailed
			execution.ErrorMessage = result.Message
		}
	}

	if err := s.actions.SaveExecution(ctx, execution); err != nil {
		s.logger.ErrorContext(ctx, "Failed to finalize execution record",
			"execution_id", execution.ID, "error", err)
	}

	s.publishFinished(ctx, definition, execution, completed.Sub(started))

	if execErr != nil {
		return execution, fmt.Errorf("action %d execution failed: %w", actionID, execErr)
	}

	return execution, nil
}

// CreateDefinition validates and stores a new action definition.
func (s *Action) CreateDefinition(ctx context.Context, definition *models.ActionDefinition) error {
	if definition.Name == "" {
		return NewValidationError("CreateDefinition", "action_name_required",
			"action name is required", ErrActionNameRequired)
	}

	if !definition.Type.Valid() {
		return &ServiceError{
			Op: "CreateDefinition", Code: "invalid_action_type",
			Message: fmt.Sprintf("unknown action type %q", definition.Type),
			Err:     ErrInvalidActionType,
		}
	}

	if err := s.registry.ValidateConfig(definition.Type, definition.Config); err != nil {
		return &ServiceError{
			Op: "CreateDefinition", Code: "invalid_config",
			Message: err.Error(),
			Err:     ErrInvalidConfig,
		}
	}

	if _, err := s.actions.GetDefinition(ctx, definition.ID); err == nil {
		return &ServiceError{
			Op: "CreateDefinition", Code: "action_already_exists",
			Message: fmt.Sprintf("action %d already exists", definition.ID),
			Err:     persistence.ErrActionAlreadyExists,
		}
	} else if !persistence.IsActionNotFound(err) {
		return fmt.Errorf("failed to check action %d: %w", definition.ID, err)
	}

	now := s.now()
	definition.CreatedAt = now
	definition.UpdatedAt = now

	return s.actions.SaveDefinition(ctx, definition)
}

// GetDefinition returns one action definition.
func (s *Action) GetDefinition(ctx context.Context, actionID int64) (*models.ActionDefinition, error) {
	return s.actions.GetDefinition(ctx, actionID)
}

// ListDefinitions returns all action definitions.
func (s *Action) ListDefinitions(ctx context.Context) ([]*models.ActionDefinition, error) {
	return s.actions.ListDefinitions(ctx)
}

// ExecutionHistory returns the audit trail for one action.
func (s *Action) ExecutionHistory(ctx context.Context, actionID int64) ([]*models.ActionExecution, error) {
	executions, err := s.actions.ListExecutionsByAction(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions for action %d: %w", actionID, err)
	}

	return executions, nil
}

func (s *Action) publishStarted(ctx context.Context, definition *models.ActionDefinition, execution *models.ActionExecution) {
	if s.publisher == nil {
		return
	}

	event := events.ActionExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.ActionExecutionStartedEvent,
			Timestamp: execution.StartedAt,
			ActionID:  definition.ID,
			WorkerID:  s.workerID,
			TenantID:  definition.TenantID,
		},
		ExecutionID: execution.ID,
		ActionType:  definition.Type,
	}

	if err := s.publisher.Publish(ctx, execution.ID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish execution started event",
			"execution_id", execution.ID, "error", err)
	}
}

func (s *Action) publishFinished(ctx context.Context, definition *models.ActionDefinition, execution *models.ActionExecution, duration time.Duration) {
	if s.publisher == nil {
		return
	}

	base := events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      events.ActionExecutionCompletedEvent,
		Timestamp: *execution.CompletedAt,
		ActionID:  definition.ID,
		WorkerID:  s.workerID,
		TenantID:  definition.TenantID,
	}

	var event eventbus.Event

	if execution.Status == models.ExecutionStatusFailed {
		base.Type = events.ActionExecutionFailedEvent
		event = events.ActionExecutionFailed{
			BaseEvent:   base,
			ExecutionID: execution.ID,
			Error:       execution.ErrorMessage,
			Duration:    duration,
		}
	} else {
		event = events.ActionExecutionCompleted{
			BaseEvent:   base,
			ExecutionID: execution.ID,
			Result:      execution.Result,
			Duration:    duration,
		}
	}

	if err := s.publisher.Publish(ctx, execution.ID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish execution finished event",
			"execution_id", execution.ID, "error", err)
	}
}
