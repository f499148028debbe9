// Package persistence provides the data storage abstraction for action
// definitions, execution records and onboarding cases.
package persistence

import (
	"context"

	"github.com/stageflow/stageflow/pkg/models"
)

type Persistence interface {
	OnboardingRepository() OnboardingRepository
	ActionRepository() ActionRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// OnboardingRepository stores onboarding cases and their stage progress.
type OnboardingRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Onboarding, error)
	Save(ctx context.Context, onboarding *models.Onboarding) error
	ListByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error)
}

// ActionRepository stores action definitions and their execution audit trail.
type ActionRepository interface {
	GetDefinition(ctx context.Context, id int64) (*models.ActionDefinition, error)
	SaveDefinition(ctx context.Context, definition *models.ActionDefinition) error
	ListDefinitions(ctx context.Context) ([]*models.ActionDefinition, error)

	GetExecution(ctx context.Context, id string) (*models.ActionExecution, error)
	SaveExecution(ctx context.Context, execution *models.ActionExecution) error
	ListExecutionsByAction(ctx context.Context, actionID int64) ([]*models.ActionExecution, error)
}
