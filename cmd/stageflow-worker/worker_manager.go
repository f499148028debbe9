package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/events"
	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/services"
	"github.com/stageflow/stageflow/pkg/workflow"
)

type WorkerManager struct {
	id            string
	logger        *slog.Logger
	actionService *services.Action
	eventBus      eventbus.EventBus
	sweeper       *workflow.Sweeper
}

func NewWorkerManager(
	id string,
	actionService *services.Action,
	eventBus eventbus.EventBus,
	sweeper *workflow.Sweeper,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:            id,
		logger:        logger.With("module", "stageflow-worker", "worker_id", id),
		actionService: actionService,
		eventBus:      eventBus,
		sweeper:       sweeper,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	err := w.eventBus.Handle(events.ActionTriggeredEvent, w.handleActionTriggered)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if w.sweeper != nil {
		if err := w.sweeper.Start(ctx); err != nil {
			return err
		}

		defer w.sweeper.Stop()
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleActionTriggered(ctx context.Context, event any) error {
	triggeredEvent, ok := event.(*events.ActionTriggered)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for ActionTriggered")

		return nil
	}

	logger := w.logger.With(
		"action_id", triggeredEvent.ActionID,
		"action_type", triggeredEvent.ActionType,
		"event_id", triggeredEvent.ID,
	)
	logger.InfoContext(ctx, "Processing action triggered event")

	trigger := models.NewTriggerContext(triggeredEvent.TriggerData)

	execution, err := w.actionService.ExecuteAction(ctx, triggeredEvent.ActionID, trigger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to execute action", "error", err)

		return err
	}

	logger.InfoContext(ctx, "Action execution finished",
		"execution_id", execution.ID, "status", execution.Status)

	return nil
}
