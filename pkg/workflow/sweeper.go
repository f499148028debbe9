package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/stageflow/stageflow/pkg/models"
)

// Lister enumerates completed onboardings for the background repair sweep.
type Lister interface {
	ListOnboardingsByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error)
}

// Sweeper periodically scans completed onboardings for stage-progress records
// left incomplete and repairs them through the orchestrator. It catches
// divergences on cases that never receive another CompleteStage call.
type Sweeper struct {
	orchestrator *Orchestrator
	lister       Lister
	schedule     string
	cron         *cron.Cron
	logger       *slog.Logger
}

func NewSweeper(orchestrator *Orchestrator, lister Lister, schedule string, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		orchestrator: orchestrator,
		lister:       lister,
		schedule:     schedule,
		cron:         cron.New(),
		logger:       logger.With("module", "repair_sweeper"),
	}
}

// Start registers the sweep on its cron schedule and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Repair sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule repair sweep: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Repair sweeper started", "schedule", s.schedule)

	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass over all completed onboardings.
func (s *Sweeper) Sweep(ctx context.Context) error {
	onboardings, err := s.lister.ListOnboardingsByStatus(ctx, models.OnboardingStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to list completed onboardings: %w", err)
	}

	op := &models.OperationContext{}

	repaired := 0

	for _, onboarding := range onboardings {
		for i := range onboarding.StageProgress {
			progress := &onboarding.StageProgress[i]
			if progress.IsCompleted {
				continue
			}

			s.orchestrator.repairStageProgress(ctx, op, onboarding, progress.StageID)

			repaired++
		}
	}

	if repaired > 0 {
		s.logger.InfoContext(ctx, "Repair sweep finished",
			"onboardings", len(onboardings), "repaired", repaired)
	}

	return nil
}
