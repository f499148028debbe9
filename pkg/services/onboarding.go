package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
	"github.com/stageflow/stageflow/pkg/workflow"
)

// Onboarding is the workflow store backed by the persistence layer. It
// implements the orchestrator's Store, ProgressWriter and Lister contracts.
// None of its operations publish events; sequencing and notification belong
// to the orchestrator so low-level writes can never re-trigger actions.
type Onboarding struct {
	repo   persistence.OnboardingRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewOnboarding(repo persistence.OnboardingRepository, logger *slog.Logger) *Onboarding {
	return &Onboarding{
		repo:   repo,
		logger: logger.With("module", "onboarding_service"),
		now:    time.Now,
	}
}

// WithClock replaces the wall clock, used by tests.
func (s *Onboarding) WithClock(now func() time.Time) *Onboarding {
	s.now = now

	return s
}

func (s *Onboarding) GetOnboarding(ctx context.Context, id int64) (*models.Onboarding, error) {
	onboarding, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if persistence.IsOnboardingNotFound(err) {
			return nil, fmt.Errorf("%w: %w", workflow.ErrOnboardingNotFound, err)
		}

		return nil, err
	}

	return onboarding, nil
}

func (s *Onboarding) ListOnboardingsByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error) {
	return s.repo.ListByStatus(ctx, status)
}

// CompleteStageInternal marks one stage completed and recomputes the
// completion rate. The onboarding itself transitions to Completed once every
// stage reports complete. PreventAutoMove is honored: the current stage
// pointer never changes here.
func (s *Onboarding) CompleteStageInternal(ctx context.Context, onboardingID int64, input workflow.CompleteStageInput) error {
	onboarding, err := s.repo.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	progress := onboarding.ProgressFor(input.StageID)
	if progress == nil {
		return fmt.Errorf("%w: stage %d on onboarding %d", workflow.ErrStageNotFound, input.StageID, onboardingID)
	}

	if progress.IsCompleted && !input.ForceComplete {
		return nil
	}

	now := s.now()

	progress.IsCompleted = true
	progress.CompletedTime = &now
	progress.CompletedBy = input.Operator
	progress.CompletedByID = input.OperatorID

	if input.Notes != "" {
		progress.Notes = input.Notes
	}

	completed := 0

	for i := range onboarding.StageProgress {
		if onboarding.StageProgress[i].IsCompleted {
			completed++
		}
	}

	if total := len(onboarding.StageProgress); total > 0 {
		onboarding.CompletionRate = completed * 100 / total
	}

	if completed == len(onboarding.StageProgress) {
		onboarding.Status = models.OnboardingStatusCompleted
	}

	onboarding.UpdatedAt = now

	return s.repo.Save(ctx, onboarding)
}

// MoveToNextStage advances the current stage pointer to the next stage in
// order. Being already on the last stage is an error to the caller, which the
// orchestrator absorbs for auto-move.
func (s *Onboarding) MoveToNextStage(ctx context.Context, onboardingID int64) error {
	onboarding, err := s.repo.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	next := onboarding.NextStageID(onboarding.CurrentStageID)
	if next == 0 {
		return fmt.Errorf("onboarding %d has no stage after %d", onboardingID, onboarding.CurrentStageID)
	}

	onboarding.CurrentStageID = next
	onboarding.UpdatedAt = s.now()

	return s.repo.Save(ctx, onboarding)
}

func (s *Onboarding) MoveToStage(ctx context.Context, onboardingID int64, input workflow.MoveStageInput) error {
	onboarding, err := s.repo.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	if onboarding.ProgressFor(input.StageID) == nil {
		return fmt.Errorf("%w: stage %d on onboarding %d", workflow.ErrStageNotFound, input.StageID, onboardingID)
	}

	onboarding.CurrentStageID = input.StageID
	onboarding.UpdatedAt = s.now()

	if input.Reason != "" {
		s.logger.InfoContext(ctx, "Onboarding moved",
			"onboarding_id", onboardingID, "stage_id", input.StageID, "reason", input.Reason)
	}

	return s.repo.Save(ctx, onboarding)
}

func (s *Onboarding) AssignCase(ctx context.Context, onboardingID int64, input workflow.AssignInput) error {
	onboarding, err := s.repo.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	assigneeID := input.AssigneeID
	onboarding.AssigneeID = &assigneeID
	onboarding.AssigneeName = input.AssigneeName

	if input.Team != "" {
		onboarding.Team = input.Team
	}

	onboarding.UpdatedAt = s.now()

	return s.repo.Save(ctx, onboarding)
}

// UpdateStageProgress persists a corrected stage-progress record constructed
// by the consistency repair.
func (s *Onboarding) UpdateStageProgress(ctx context.Context, onboardingID int64, progress models.StageProgress) error {
	onboarding, err := s.repo.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	existing := onboarding.ProgressFor(progress.StageID)
	if existing == nil {
		return fmt.Errorf("%w: stage %d on onboarding %d", workflow.ErrStageNotFound, progress.StageID, onboardingID)
	}

	*existing = progress
	onboarding.UpdatedAt = s.now()

	return s.repo.Save(ctx, onboarding)
}
