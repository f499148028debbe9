// Package models defines the core domain models for onboarding action execution.
package models

import "time"

// ActionType identifies the executor responsible for an action definition.
type ActionType string

const (
	ActionTypeSendEmail    ActionType = "send_email"
	ActionTypeHTTPAPI      ActionType = "http_api"
	ActionTypeRemoteScript ActionType = "remote_script"
	ActionTypeSystem       ActionType = "system"
)

// Valid reports whether t is one of the registered action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionTypeSendEmail, ActionTypeHTTPAPI, ActionTypeRemoteScript, ActionTypeSystem:
		return true
	}

	return false
}

// ActionDefinition is a configured action attached to a stage trigger.
// Config is an opaque JSON document whose schema is owned by the executor
// selected by Type; it is never validated generically.
type ActionDefinition struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"        validate:"required,min=3"`
	Description string     `json:"description"`
	Type        ActionType `json:"type"        validate:"required"`
	Config      string     `json:"config"`
	Enabled     bool       `json:"enabled"`
	TenantID    string     `json:"tenant_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ExecutionStatus is the lifecycle state of an ActionExecution record.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// ActionExecution is the persisted audit record of a single dispatch.
type ActionExecution struct {
	ID             string           `json:"id"`
	ActionID       int64            `json:"action_id"`
	ActionName     string           `json:"action_name"`
	ActionType     ActionType       `json:"action_type"`
	Status         ExecutionStatus  `json:"status"`
	TriggerContext map[string]any   `json:"trigger_context,omitempty"`
	Result         *ExecutionResult `json:"result,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}
