package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/events"
	"github.com/stageflow/stageflow/pkg/lock"
	"github.com/stageflow/stageflow/pkg/models"
)

const completionLockTTL = 30 * time.Second

// Orchestrator drives stage transitions against the workflow store. Stage
// completion for a given (onboarding, stage) pair is serialized through an
// advisory lock so two concurrent completions cannot both pass the
// idempotency check.
type Orchestrator struct {
	store     Store
	progress  ProgressWriter
	locker    lock.Locker
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewOrchestrator(store Store, progress ProgressWriter, locker lock.Locker, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		progress: progress,
		locker:   locker,
		logger:   logger.With("module", "workflow"),
	}
}

// WithPublisher enables stage transition notifications. The low-level store
// writes stay event-free; only the orchestrator's top-level outcome is
// published, so a completion can never re-trigger itself.
func (o *Orchestrator) WithPublisher(publisher eventbus.EventPublisher) *Orchestrator {
	o.publisher = publisher

	return o
}

// CompleteStageRequest carries the resolved completion parameters.
type CompleteStageRequest struct {
	OnboardingID   int64
	StageID        int64
	Notes          string
	AutoMoveToNext bool
}

// CompleteStage marks a stage completed. When the owning onboarding is
// already Completed the call is a no-op signal: it runs the consistency
// repair check and reports alreadyCompleted without an error. Auto-move to
// the next stage is a separate best-effort operation whose failure never
// rolls back the completion.
func (o *Orchestrator) CompleteStage(ctx context.Context, op *models.OperationContext, req CompleteStageRequest) (*models.ExecutionResult, error) {
	now := op.Clock()()

	key := fmt.Sprintf("onboarding:%d:stage:%d", req.OnboardingID, req.StageID)

	acquired, err := o.locker.Acquire(ctx, key, completionLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire completion lock: %w", err)
	}

	if !acquired {
		o.logger.WarnContext(ctx, "Concurrent stage completion in progress",
			"onboarding_id", req.OnboardingID, "stage_id", req.StageID)

		result := models.NewFailureResult("stage completion already in progress", now)
		result.System = o.systemResult("CompleteStage", op, req)

		return result, nil
	}

	defer func() {
		if err := o.locker.Release(ctx, key); err != nil {
			o.logger.WarnContext(ctx, "Failed to release completion lock", "key", key, "error", err)
		}
	}()

	onboarding, err := o.store.GetOnboarding(ctx, req.OnboardingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding %d: %w", req.OnboardingID, err)
	}

	if onboarding.Status == models.OnboardingStatusCompleted {
		o.repairStageProgress(ctx, op, onboarding, req.StageID)

		result := models.NewFailureResult("onboarding already completed", now)
		result.System = o.systemResult("CompleteStage", op, req)
		result.System.AlreadyCompleted = true

		return result, nil
	}

	input := CompleteStageInput{
		StageID:         req.StageID,
		Notes:           req.Notes,
		PreventAutoMove: true,
		Operator:        op.Actor(),
		OperatorID:      op.ActorID(),
	}

	if err := o.store.CompleteStageInternal(ctx, req.OnboardingID, input); err != nil {
		return nil, fmt.Errorf("failed to complete stage %d: %w", req.StageID, err)
	}

	o.logger.InfoContext(ctx, "Stage completed",
		"onboarding_id", req.OnboardingID, "stage_id", req.StageID, "operator", op.Actor())

	if req.AutoMoveToNext {
		if err := o.store.MoveToNextStage(ctx, req.OnboardingID); err != nil {
			o.logger.WarnContext(ctx, "Auto move to next stage failed",
				"onboarding_id", req.OnboardingID, "stage_id", req.StageID, "error", err)
		}
	}

	o.publishStageCompleted(ctx, op, req, now)

	result := models.NewSuccessResult(
		fmt.Sprintf("Stage %d completed for onboarding %d", req.StageID, req.OnboardingID), now)
	result.System = o.systemResult("CompleteStage", op, req)
	result.System.InternalCompletion = true

	return result, nil
}

func (o *Orchestrator) publishStageCompleted(ctx context.Context, op *models.OperationContext, req CompleteStageRequest, now time.Time) {
	if o.publisher == nil {
		return
	}

	event := events.StageCompleted{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.StageCompletedEvent,
			Timestamp: now,
			TenantID:  op.TenantID,
		},
		OnboardingID: req.OnboardingID,
		StageID:      req.StageID,
		Operator:     op.Actor(),
		AutoMoved:    req.AutoMoveToNext,
	}

	key := fmt.Sprintf("onboarding-%d", req.OnboardingID)

	if err := o.publisher.Publish(ctx, key, event); err != nil {
		o.logger.WarnContext(ctx, "Failed to publish stage completed event",
			"onboarding_id", req.OnboardingID, "stage_id", req.StageID, "error", err)
	}
}

// MoveToStage moves an onboarding to an explicit target stage.
func (o *Orchestrator) MoveToStage(ctx context.Context, op *models.OperationContext, onboardingID, stageID int64, reason string) (*models.ExecutionResult, error) {
	now := op.Clock()()

	if err := o.store.MoveToStage(ctx, onboardingID, MoveStageInput{StageID: stageID, Reason: reason}); err != nil {
		result := models.NewFailureResult(fmt.Sprintf("failed to move to stage %d: %v", stageID, err), now)
		result.System = &models.SystemResult{
			ActionName:   "MoveToStage",
			OnboardingID: onboardingID,
			StageID:      stageID,
			Operator:     op.Actor(),
		}

		return result, nil
	}

	o.logger.InfoContext(ctx, "Onboarding moved",
		"onboarding_id", onboardingID, "stage_id", stageID, "operator", op.Actor())

	result := models.NewSuccessResult(
		fmt.Sprintf("Onboarding %d moved to stage %d", onboardingID, stageID), now)
	result.System = &models.SystemResult{
		ActionName:   "MoveToStage",
		OnboardingID: onboardingID,
		StageID:      stageID,
		Operator:     op.Actor(),
	}

	return result, nil
}

// AssignCase assigns an onboarding to a user and optional team.
func (o *Orchestrator) AssignCase(ctx context.Context, op *models.OperationContext, onboardingID, assigneeID int64, assigneeName, team string) (*models.ExecutionResult, error) {
	now := op.Clock()()

	input := AssignInput{
		AssigneeID:   assigneeID,
		AssigneeName: assigneeName,
		Team:         team,
	}

	echo := &models.SystemResult{
		ActionName:   "AssignOnboarding",
		OnboardingID: onboardingID,
		AssigneeID:   assigneeID,
		AssigneeName: assigneeName,
		Team:         team,
		Operator:     op.Actor(),
	}

	if err := o.store.AssignCase(ctx, onboardingID, input); err != nil {
		result := models.NewFailureResult(fmt.Sprintf("failed to assign onboarding %d: %v", onboardingID, err), now)
		result.System = echo

		return result, nil
	}

	o.logger.InfoContext(ctx, "Onboarding assigned",
		"onboarding_id", onboardingID, "assignee_id", assigneeID, "operator", op.Actor())

	result := models.NewSuccessResult(
		fmt.Sprintf("Onboarding %d assigned to %d", onboardingID, assigneeID), now)
	result.System = echo

	return result, nil
}

func (o *Orchestrator) systemResult(actionName string, op *models.OperationContext, req CompleteStageRequest) *models.SystemResult {
	return &models.SystemResult{
		ActionName:     actionName,
		OnboardingID:   req.OnboardingID,
		StageID:        req.StageID,
		Operator:       op.Actor(),
		AutoMoveToNext: req.AutoMoveToNext,
		Notes:          req.Notes,
	}
}
