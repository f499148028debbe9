// Package registry routes action dispatches to the executor registered for
// the declared action type.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/otelhelper"
	"github.com/stageflow/stageflow/pkg/protocol"
)

// ErrUnsupportedActionType is returned when no executor is registered for the
// requested action type.
var ErrUnsupportedActionType = errors.New("unsupported action type")

type Registry struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	executors map[models.ActionType]protocol.Executor
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		executors: make(map[models.ActionType]protocol.Executor),
	}
}

// WithTracer enables span creation per dispatch.
func (r *Registry) WithTracer(tracer trace.Tracer) *Registry {
	r.tracer = tracer

	return r
}

func (r *Registry) Register(executor protocol.Executor) {
	r.executors[executor.Type()] = executor
}

// Executor returns the registered executor for an action type.
func (r *Registry) Executor(actionType models.ActionType) (protocol.Executor, error) {
	executor, ok := r.executors[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedActionType, actionType)
	}

	return executor, nil
}

// HealthCheck reports the registered executors. Not healthy until at least
// one executor is registered.
func (r *Registry) HealthCheck() (map[string]string, bool) {
	check := make(map[string]string, len(r.executors))

	for actionType := range r.executors {
		check[string(actionType)] = "registered"
	}

	return check, len(r.executors) > 0
}

// Dispatch routes one trigger to the executor registered for actionType. At
// most one executor is invoked; no retries happen here, retry policy belongs
// to the executors. A non-nil error means either an unknown action type or a
// configuration error propagated by the system executor.
func (r *Registry) Dispatch(
	ctx context.Context,
	actionType models.ActionType,
	config string,
	trigger *models.TriggerContext,
) (*models.ExecutionResult, error) {
	logger := r.logger.With("action_type", actionType)

	executor, err := r.Executor(actionType)
	if err != nil {
		logger.ErrorContext(ctx, "No executor registered for action type")

		return nil, err
	}

	var span trace.Span

	if r.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, r.tracer, "action.dispatch",
			attribute.String(otelhelper.ActionTypeKey, string(actionType)))
		defer span.End()
	}

	logger.InfoContext(ctx, "Dispatching action")

	result, err := executor.Execute(ctx, config, trigger, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Action execution returned error", "error", err)

		if span != nil {
			otelhelper.SetError(span, err,
				attribute.String(otelhelper.ActionTypeKey, string(actionType)))
		}

		return nil, err
	}

	logger.InfoContext(ctx, "Action execution finished",
		"success", result.Success, "message", result.Message)

	return result, nil
}
