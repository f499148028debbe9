package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/events"
	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
	"github.com/stageflow/stageflow/pkg/persistence/file"
	"github.com/stageflow/stageflow/pkg/registry"
)

type stubExecutor struct {
	actionType models.ActionType
	result     *models.ExecutionResult
	err        error
}

func (s *stubExecutor) Type() models.ActionType {
	return s.actionType
}

func (s *stubExecutor) Execute(_ context.Context, _ string, _ *models.TriggerContext, _ *slog.Logger) (*models.ExecutionResult, error) {
	return s.result, s.err
}

type capturingPublisher struct {
	events []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) GenerateID() string { return "test-id" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newActionService(t *testing.T, executor *stubExecutor) (*Action, persistence.ActionRepository, *capturingPublisher) {
	t.Helper()

	repo := file.NewPersistence(t.TempDir()).ActionRepository()

	reg := registry.NewRegistry(testLogger())
	reg.Register(executor)

	publisher := &capturingPublisher{}

	service := NewAction(repo, reg, publisher, testLogger(), "worker-test")

	return service, repo, publisher
}

func TestExecuteAction_RecordsCompletedExecution(t *testing.T) {
	executor := &stubExecutor{
		actionType: models.ActionTypeHTTPAPI,
		result:     &models.ExecutionResult{Success: true, Message: "200 OK"},
	}
	service, repo, publisher := newActionService(t, executor)
	ctx := context.Background()

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{
		ID: 7, Name: "ping", Type: models.ActionTypeHTTPAPI, Enabled: true,
	}))

	trigger := models.NewTriggerContext(map[string]any{"OnboardingId": 42.0})

	execution, err := service.ExecuteAction(ctx, 7, trigger)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "ping", execution.ActionName)
	require.NotNil(t, execution.Result)
	assert.True(t, execution.Result.Success)
	require.NotNil(t, execution.CompletedAt)

	stored, err := repo.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)

	require.Len(t, publisher.events, 2)
	started, ok := publisher.events[0].(events.ActionExecutionStarted)
	require.True(t, ok)
	assert.Equal(t, execution.ID, started.ExecutionID)
	assert.Equal(t, "worker-test", started.WorkerID)

	completed, ok := publisher.events[1].(events.ActionExecutionCompleted)
	require.True(t, ok)
	assert.Equal(t, execution.ID, completed.ExecutionID)
}

func TestExecuteAction_FailureResultMarksExecutionFailed(t *testing.T) {
	executor := &stubExecutor{
		actionType: models.ActionTypeHTTPAPI,
		result:     &models.ExecutionResult{Success: false, Message: "HTTP request returned status 502"},
	}
	service, repo, publisher := newActionService(t, executor)
	ctx := context.Background()

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{
		ID: 7, Name: "ping", Type: models.ActionTypeHTTPAPI, Enabled: true,
	}))

	execution, err := service.ExecuteAction(ctx, 7, models.NewTriggerContext(nil))
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "HTTP request returned status 502", execution.ErrorMessage)

	require.Len(t, publisher.events, 2)
	failed, ok := publisher.events[1].(events.ActionExecutionFailed)
	require.True(t, ok)
	assert.Equal(t, "HTTP request returned status 502", failed.Error)
}

func TestExecuteAction_ExecutorErrorReturnsRecordAndError(t *testing.T) {
	executor := &stubExecutor{
		actionType: models.ActionTypeSystem,
		err:        assert.AnError,
	}
	service, repo, _ := newActionService(t, executor)
	ctx := context.Background()

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{
		ID: 9, Name: "complete", Type: models.ActionTypeSystem, Enabled: true,
	}))

	execution, err := service.ExecuteAction(ctx, 9, models.NewTriggerContext(nil))
	require.ErrorIs(t, err, assert.AnError)

	require.NotNil(t, execution)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.NotEmpty(t, execution.ErrorMessage)
}

func TestExecuteAction_DisabledAction(t *testing.T) {
	service, repo, _ := newActionService(t, &stubExecutor{actionType: models.ActionTypeHTTPAPI})
	ctx := context.Background()

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{
		ID: 7, Name: "ping", Type: models.ActionTypeHTTPAPI, Enabled: false,
	}))

	_, err := service.ExecuteAction(ctx, 7, models.NewTriggerContext(nil))

	require.ErrorIs(t, err, ErrActionDisabled)
}

func TestExecuteAction_UnknownAction(t *testing.T) {
	service, _, _ := newActionService(t, &stubExecutor{actionType: models.ActionTypeHTTPAPI})

	_, err := service.ExecuteAction(context.Background(), 999, models.NewTriggerContext(nil))

	require.ErrorIs(t, err, persistence.ErrActionNotFound)
}

func TestCreateDefinition(t *testing.T) {
	service, repo, _ := newActionService(t, &stubExecutor{actionType: models.ActionTypeHTTPAPI})
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return now })

	definition := &models.ActionDefinition{
		ID: 7, Name: "notify ops", Type: models.ActionTypeHTTPAPI,
		Config: `{"url":"http://example.com"}`, Enabled: true,
	}

	require.NoError(t, service.CreateDefinition(ctx, definition))
	assert.Equal(t, now, definition.CreatedAt)
	assert.Equal(t, now, definition.UpdatedAt)

	stored, err := repo.GetDefinition(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "notify ops", stored.Name)

	err = service.CreateDefinition(ctx, definition)
	require.ErrorIs(t, err, persistence.ErrActionAlreadyExists)
}

func TestCreateDefinition_InvalidType(t *testing.T) {
	service, _, _ := newActionService(t, &stubExecutor{actionType: models.ActionTypeHTTPAPI})

	err := service.CreateDefinition(context.Background(), &models.ActionDefinition{
		ID: 7, Name: "bad", Type: "carrier_pigeon",
	})

	require.ErrorIs(t, err, ErrInvalidActionType)
	assert.True(t, IsValidationError(err))
}

func TestExecutionHistory(t *testing.T) {
	executor := &stubExecutor{
		actionType: models.ActionTypeHTTPAPI,
		result:     &models.ExecutionResult{Success: true, Message: "ok"},
	}
	service, repo, _ := newActionService(t, executor)
	ctx := context.Background()

	require.NoError(t, repo.SaveDefinition(ctx, &models.ActionDefinition{
		ID: 7, Name: "ping", Type: models.ActionTypeHTTPAPI, Enabled: true,
	}))

	_, err := service.ExecuteAction(ctx, 7, models.NewTriggerContext(nil))
	require.NoError(t, err)
	_, err = service.ExecuteAction(ctx, 7, models.NewTriggerContext(nil))
	require.NoError(t, err)

	history, err := service.ExecutionHistory(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
