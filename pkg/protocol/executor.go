// Package protocol defines the contracts between the dispatcher and executor
// implementations.
package protocol

import (
	"context"
	"log/slog"

	"github.com/stageflow/stageflow/pkg/models"
)

// Executor handles one action type. Config is the raw JSON document of the
// action definition; the executor owns its schema.
//
// Every executor except the system executor converts internal failures into a
// failure ExecutionResult and returns a nil error. The system executor
// returns configuration errors so that the caller can distinguish "nothing
// happened due to bad config" from "happened but failed".
type Executor interface {
	Type() models.ActionType
	Execute(ctx context.Context, config string, trigger *models.TriggerContext, logger *slog.Logger) (*models.ExecutionResult, error)
}

// SchemaProvider is implemented by executors that publish a JSON schema for
// their configuration document.
type SchemaProvider interface {
	Schema() map[string]any
}
