// Package web provides HTTP request and response types for the action API.
package web

import "github.com/stageflow/stageflow/pkg/models"

// CreateActionRequest represents the request body for creating a new action definition.
type CreateActionRequest struct {
	ID          int64             `json:"id"          validate:"required,gt=0"`
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description"`
	Type        models.ActionType `json:"type"        validate:"required"`
	Config      string            `json:"config"`
	Enabled     bool              `json:"enabled"`
	TenantID    string            `json:"tenant_id"`
}

// ExecuteActionRequest represents the request body for dispatching an action.
// TriggerContext is the raw field tree handed to the executor.
type ExecuteActionRequest struct {
	TriggerContext map[string]any `json:"trigger_context"`
}

// CompleteStageRequest represents the request body for completing a stage on
// an onboarding case.
type CompleteStageRequest struct {
	Notes          string `json:"notes"`
	AutoMoveToNext *bool  `json:"auto_move_to_next,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	UserName       string `json:"user_name,omitempty"`
	TenantID       string `json:"tenant_id,omitempty"`
}
