// Package workflow holds the stage transition orchestrator: the state-machine
// logic behind completing, moving and assigning onboarding cases, including
// the idempotency guard and the consistency repair for divergent stage
// progress.
package workflow

import (
	"context"
	"errors"

	"github.com/stageflow/stageflow/pkg/models"
)

var (
	ErrOnboardingNotFound = errors.New("onboarding not found")
	ErrStageNotFound      = errors.New("stage not found")
)

// CompleteStageInput parameterizes the low-level completion call.
// PreventAutoMove is forced true by the orchestrator so the store never
// cascades on its own.
type CompleteStageInput struct {
	StageID         int64
	Notes           string
	ForceComplete   bool
	PreventAutoMove bool
	Operator        string
	OperatorID      *int64
}

// MoveStageInput parameterizes an explicit stage move.
type MoveStageInput struct {
	StageID int64
	Reason  string
}

// AssignInput parameterizes a case assignment.
type AssignInput struct {
	AssigneeID   int64
	AssigneeName string
	Team         string
}

// Store is the workflow store consumed by the orchestrator. Implementations
// own persistence; the orchestrator owns sequencing and idempotency.
type Store interface {
	GetOnboarding(ctx context.Context, id int64) (*models.Onboarding, error)
	CompleteStageInternal(ctx context.Context, onboardingID int64, input CompleteStageInput) error
	MoveToNextStage(ctx context.Context, onboardingID int64) error
	MoveToStage(ctx context.Context, onboardingID int64, input MoveStageInput) error
	AssignCase(ctx context.Context, onboardingID int64, input AssignInput) error
}

// ProgressWriter persists a corrected stage-progress record. The repair logic
// detects and constructs; the writer owns the actual update.
type ProgressWriter interface {
	UpdateStageProgress(ctx context.Context, onboardingID int64, progress models.StageProgress) error
}
