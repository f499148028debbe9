// Package system implements workflow-internal actions: stage completion,
// explicit stage moves, and case assignment. Unlike the other executors it
// propagates configuration errors, so upstream orchestration can hard-fail a
// misconfigured trigger instead of silently doing nothing.
package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/workflow"
)

var (
	ErrMissingActionName   = errors.New("system action configuration has no actionName")
	ErrUnsupportedAction   = errors.New("unsupported system action")
	ErrMissingOnboardingID = errors.New("onboardingId is required")
	ErrMissingStageID      = errors.New("stageId is required")
	ErrMissingAssigneeID   = errors.New("assigneeId is required")
)

// Config is the system action configuration. ActionName selects the
// operation; the identifier fields are optional here because each operation
// falls back to trigger context fields with its own precedence.
type Config struct {
	ActionName      string `json:"actionName"`
	OnboardingID    *int64 `json:"onboardingId,omitempty"`
	StageID         *int64 `json:"stageId,omitempty"`
	TargetStageID   *int64 `json:"targetStageId,omitempty"`
	AssigneeID      *int64 `json:"assigneeId,omitempty"`
	AssigneeName    string `json:"assigneeName,omitempty"`
	Team            string `json:"team,omitempty"`
	CompletionNotes string `json:"completionNotes,omitempty"`
	Reason          string `json:"reason,omitempty"`
	AutoMoveToNext  *bool  `json:"autoMoveToNext,omitempty"`
}

type Executor struct {
	orchestrator *workflow.Orchestrator
}

func NewExecutor(orchestrator *workflow.Orchestrator) *Executor {
	return &Executor{orchestrator: orchestrator}
}

func (e *Executor) Type() models.ActionType {
	return models.ActionTypeSystem
}

func (e *Executor) Execute(ctx context.Context, config string, trigger *models.TriggerContext, logger *slog.Logger) (*models.ExecutionResult, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		return nil, fmt.Errorf("invalid system action configuration: %w", err)
	}

	if cfg.ActionName == "" {
		return nil, ErrMissingActionName
	}

	op := operationContext(trigger)

	switch strings.ToLower(cfg.ActionName) {
	case "completestage":
		return e.completeStage(ctx, op, cfg, trigger)
	case "movetostage":
		return e.moveToStage(ctx, op, cfg, trigger)
	case "assignonboarding":
		return e.assignOnboarding(ctx, op, cfg, trigger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, cfg.ActionName)
	}
}

func (e *Executor) completeStage(ctx context.Context, op *models.OperationContext, cfg Config, trigger *models.TriggerContext) (*models.ExecutionResult, error) {
	onboardingID, ok := resolveOnboardingID(cfg.OnboardingID, trigger)
	if !ok {
		return nil, ErrMissingOnboardingID
	}

	stageID, ok := resolveStageID(cfg.StageID, trigger)
	if !ok {
		return nil, ErrMissingStageID
	}

	autoMove := true
	if cfg.AutoMoveToNext != nil {
		autoMove = *cfg.AutoMoveToNext
	}

	return e.orchestrator.CompleteStage(ctx, op, workflow.CompleteStageRequest{
		OnboardingID:   onboardingID,
		StageID:        stageID,
		Notes:          cfg.CompletionNotes,
		AutoMoveToNext: autoMove,
	})
}

func (e *Executor) moveToStage(ctx context.Context, op *models.OperationContext, cfg Config, trigger *models.TriggerContext) (*models.ExecutionResult, error) {
	onboardingID, ok := resolveOnboardingID(cfg.OnboardingID, trigger)
	if !ok {
		return nil, ErrMissingOnboardingID
	}

	target := cfg.TargetStageID
	if target == nil {
		target = cfg.StageID
	}

	stageID, ok := resolveValue(target, trigger, "TargetStageId", "StageId")
	if !ok {
		return nil, ErrMissingStageID
	}

	return e.orchestrator.MoveToStage(ctx, op, onboardingID, stageID, cfg.Reason)
}

func (e *Executor) assignOnboarding(ctx context.Context, op *models.OperationContext, cfg Config, trigger *models.TriggerContext) (*models.ExecutionResult, error) {
	onboardingID, ok := resolveOnboardingID(cfg.OnboardingID, trigger)
	if !ok {
		return nil, ErrMissingOnboardingID
	}

	assigneeID, ok := resolveValue(cfg.AssigneeID, trigger, "AssigneeId")
	if !ok {
		return nil, ErrMissingAssigneeID
	}

	return e.orchestrator.AssignCase(ctx, op, onboardingID, assigneeID, cfg.AssigneeName, cfg.Team)
}

// resolveStageID applies the documented precedence: explicit config value,
// then the trigger's StageId, CompletedStageId and CurrentStageId fields, in
// that order. Producers of the same trigger context disagree on naming.
func resolveStageID(configured *int64, trigger *models.TriggerContext) (int64, bool) {
	return resolveValue(configured, trigger, "StageId", "CompletedStageId", "CurrentStageId")
}

func resolveOnboardingID(configured *int64, trigger *models.TriggerContext) (int64, bool) {
	return resolveValue(configured, trigger, "OnboardingId")
}

func resolveValue(configured *int64, trigger *models.TriggerContext, fallbacks ...string) (int64, bool) {
	if configured != nil {
		return *configured, true
	}

	for _, name := range fallbacks {
		if v, ok := trigger.Int64(name); ok {
			return v, true
		}
	}

	return 0, false
}

// operationContext lifts the acting user out of the trigger context. Absent
// fields leave the zero value, whose attribution falls back to "System".
func operationContext(trigger *models.TriggerContext) *models.OperationContext {
	op := &models.OperationContext{}

	if v, ok := trigger.String("UserId"); ok {
		op.UserID = v
	}

	if v, ok := trigger.String("UserName"); ok {
		op.UserName = v
	}

	if v, ok := trigger.String("TenantId"); ok {
		op.TenantID = v
	}

	return op
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"actionName"},
		"properties": map[string]any{
			"actionName": map[string]any{
				"type":        "string",
				"enum":        []string{"completestage", "movetostage", "assignonboarding"},
				"description": "System operation to perform",
			},
			"onboardingId": map[string]any{
				"type":        "integer",
				"description": "Target onboarding case, falls back to the trigger context",
			},
			"stageId": map[string]any{
				"type":        "integer",
				"description": "Stage to complete or move to, falls back to the trigger context",
			},
			"targetStageId": map[string]any{
				"type":        "integer",
				"description": "Explicit move target, takes precedence over stageId for moves",
			},
			"assigneeId": map[string]any{
				"type":        "integer",
				"description": "User the case is assigned to",
			},
			"assigneeName": map[string]any{"type": "string"},
			"team":         map[string]any{"type": "string"},
			"completionNotes": map[string]any{
				"type":        "string",
				"description": "Notes recorded on the completed stage",
			},
			"reason": map[string]any{"type": "string"},
			"autoMoveToNext": map[string]any{
				"type":        "boolean",
				"description": "Advance to the next stage after completion, defaults to true",
			},
		},
	}
}
