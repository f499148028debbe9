package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
)

func TestOnboardingRepository_SaveAndGet(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.OnboardingRepository()
	ctx := context.Background()

	onboarding := &models.Onboarding{
		ID:             42,
		CaseName:       "Acme rollout",
		Status:         models.OnboardingStatusActive,
		CurrentStageID: 5,
		StageProgress: []models.StageProgress{
			{StageID: 5, StageOrder: 1},
			{StageID: 6, StageOrder: 2},
		},
	}

	require.NoError(t, repo.Save(ctx, onboarding))

	loaded, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, "Acme rollout", loaded.CaseName)
	assert.Equal(t, models.OnboardingStatusActive, loaded.Status)
	require.Len(t, loaded.StageProgress, 2)
	assert.Equal(t, int64(5), loaded.StageProgress[0].StageID)
}

func TestOnboardingRepository_NotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.OnboardingRepository().GetByID(context.Background(), 999)

	require.ErrorIs(t, err, persistence.ErrOnboardingNotFound)
	assert.True(t, persistence.IsOnboardingNotFound(err))
}

func TestOnboardingRepository_ListByStatus(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.OnboardingRepository()
	ctx := context.Background()

	empty, err := repo.ListByStatus(ctx, models.OnboardingStatusActive)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Save(ctx, &models.Onboarding{ID: 1, Status: models.OnboardingStatusActive}))
	require.NoError(t, repo.Save(ctx, &models.Onboarding{ID: 2, Status: models.OnboardingStatusCompleted}))
	require.NoError(t, repo.Save(ctx, &models.Onboarding{ID: 3, Status: models.OnboardingStatusCompleted}))

	completed, err := repo.ListByStatus(ctx, models.OnboardingStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	active, err := repo.ListByStatus(ctx, models.OnboardingStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
}

func TestActionRepository_Definitions(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.ActionRepository()
	ctx := context.Background()

	definition := &models.ActionDefinition{
		ID:      7,
		Name:    "notify ops",
		Type:    models.ActionTypeHTTPAPI,
		Config:  `{"url":"http://example.com"}`,
		Enabled: true,
	}

	require.NoError(t, repo.SaveDefinition(ctx, definition))

	loaded, err := repo.GetDefinition(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "notify ops", loaded.Name)
	assert.Equal(t, models.ActionTypeHTTPAPI, loaded.Type)

	_, err = repo.GetDefinition(ctx, 8)
	require.ErrorIs(t, err, persistence.ErrActionNotFound)

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{ID: 2, Name: "second", Type: models.ActionTypeSystem}))

	definitions, err := repo.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Equal(t, int64(2), definitions[0].ID)
	assert.Equal(t, int64(7), definitions[1].ID)
}

func TestActionRepository_Executions(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.ActionRepository()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &models.ActionExecution{
		ID:        "exec-1",
		ActionID:  7,
		Status:    models.ExecutionStatusCompleted,
		StartedAt: base,
	}
	second := &models.ActionExecution{
		ID:        "exec-2",
		ActionID:  7,
		Status:    models.ExecutionStatusFailed,
		StartedAt: base.Add(time.Minute),
	}
	other := &models.ActionExecution{
		ID:        "exec-3",
		ActionID:  8,
		Status:    models.ExecutionStatusRunning,
		StartedAt: base,
	}

	require.NoError(t, repo.SaveExecution(ctx, second))
	require.NoError(t, repo.SaveExecution(ctx, first))
	require.NoError(t, repo.SaveExecution(ctx, other))

	loaded, err := repo.GetExecution(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)

	_, err = repo.GetExecution(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)

	executions, err := repo.ListExecutionsByAction(ctx, 7)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-1", executions[0].ID)
	assert.Equal(t, "exec-2", executions[1].ID)
}

func TestActionRepository_ListExecutionsEmpty(t *testing.T) {
	p := NewPersistence(t.TempDir())

	executions, err := p.ActionRepository().ListExecutionsByAction(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestPersistence_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	p := NewPersistence("file://" + dir)
	require.NoError(t, p.HealthCheck(context.Background()))

	missing := NewPersistence(dir + "/does-not-exist")
	require.Error(t, missing.HealthCheck(context.Background()))
}
