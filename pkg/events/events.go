// Package events defines event types and structures for action lifecycle notifications.
package events

import (
	"time"

	"github.com/stageflow/stageflow/pkg/models"
)

type EventType string

// Kafka topics.
const Topic = "stageflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Action lifecycle events.
	ActionTriggeredEvent          EventType = "action.triggered"
	ActionExecutionStartedEvent   EventType = "action.execution.started"
	ActionExecutionCompletedEvent EventType = "action.execution.completed"
	ActionExecutionFailedEvent    EventType = "action.execution.failed"

	// Stage transition events.
	StageCompletedEvent EventType = "stage.completed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ActionID  int64          `json:"action_id,omitempty"`
	WorkerID  string         `json:"worker_id,omitempty"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ActionTriggered struct {
	BaseEvent

	ActionType  models.ActionType `json:"action_type"`
	TriggerData map[string]any    `json:"trigger_data,omitempty"`
}

func (e ActionTriggered) GetType() EventType {
	return ActionTriggeredEvent
}

type ActionExecutionStarted struct {
	BaseEvent

	ExecutionID string            `json:"execution_id"`
	ActionType  models.ActionType `json:"action_type"`
}

func (e ActionExecutionStarted) GetType() EventType {
	return ActionExecutionStartedEvent
}

type ActionExecutionCompleted struct {
	BaseEvent

	ExecutionID string                  `json:"execution_id"`
	Result      *models.ExecutionResult `json:"result,omitempty"`
	Duration    time.Duration           `json:"duration"`
}

func (e ActionExecutionCompleted) GetType() EventType {
	return ActionExecutionCompletedEvent
}

type ActionExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e ActionExecutionFailed) GetType() EventType {
	return ActionExecutionFailedEvent
}

type StageCompleted struct {
	BaseEvent

	OnboardingID int64  `json:"onboarding_id"`
	StageID      int64  `json:"stage_id"`
	Operator     string `json:"operator,omitempty"`
	AutoMoved    bool   `json:"auto_moved,omitempty"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}
