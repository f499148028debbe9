package workflow

import (
	"context"

	"github.com/stageflow/stageflow/pkg/models"
)

// repairStageProgress corrects the one tolerated divergence: an onboarding
// marked Completed while the given stage's progress record still reports
// incomplete. The corrected record is constructed here and handed to the
// progress writer, which owns the persistence.
func (o *Orchestrator) repairStageProgress(ctx context.Context, op *models.OperationContext, onboarding *models.Onboarding, stageID int64) {
	progress := onboarding.ProgressFor(stageID)
	if progress == nil || progress.IsCompleted {
		return
	}

	if onboarding.Status != models.OnboardingStatusCompleted {
		return
	}

	o.logger.WarnContext(ctx, "Repairing divergent stage progress",
		"onboarding_id", onboarding.ID, "stage_id", stageID)

	corrected := *progress
	corrected.IsCompleted = true
	corrected.CompletedBy = op.Actor()
	corrected.CompletedByID = op.ActorID()

	if corrected.CompletedTime == nil {
		now := op.Clock()()
		corrected.CompletedTime = &now
	}

	if err := o.progress.UpdateStageProgress(ctx, onboarding.ID, corrected); err != nil {
		o.logger.ErrorContext(ctx, "Failed to persist repaired stage progress",
			"onboarding_id", onboarding.ID, "stage_id", stageID, "error", err)
	}
}
