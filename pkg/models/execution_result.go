package models

import "time"

// ExecutionResult is the uniform outcome envelope returned by every executor.
// Exactly one of the payload pointers is set, keyed by the executor that
// produced it.
type ExecutionResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`

	HTTP   *HTTPResult   `json:"http,omitempty"`
	Script *ScriptResult `json:"script,omitempty"`
	Email  *EmailResult  `json:"email,omitempty"`
	System *SystemResult `json:"system,omitempty"`
}

// HTTPResult carries the post-processed response of an HTTP API action.
type HTTPResult struct {
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body"`
	ContentType string            `json:"content_type,omitempty"`
	URL         string            `json:"url"`
	Method      string            `json:"method"`
}

// ScriptResult carries the terminal state of a remote script job.
type ScriptResult struct {
	Token      string  `json:"token,omitempty"`
	StatusID   int     `json:"status_id"`
	StatusName string  `json:"status_name,omitempty"`
	Stdout     string  `json:"stdout,omitempty"`
	Stderr     string  `json:"stderr,omitempty"`
	TimeMs     float64 `json:"time_ms,omitempty"`
	MemoryKB   int64   `json:"memory_kb,omitempty"`
	TimedOut   bool    `json:"timed_out,omitempty"`
}

// EmailResult records the delivery attempt of a send_email action.
type EmailResult struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
}

// SystemResult echoes the parameters and outcome of a system action.
type SystemResult struct {
	ActionName         string `json:"action_name"`
	OnboardingID       int64  `json:"onboarding_id"`
	StageID            int64  `json:"stage_id,omitempty"`
	AssigneeID         int64  `json:"assignee_id,omitempty"`
	AssigneeName       string `json:"assignee_name,omitempty"`
	Team               string `json:"team,omitempty"`
	Operator           string `json:"operator,omitempty"`
	AlreadyCompleted   bool   `json:"already_completed,omitempty"`
	AutoMoveToNext     bool   `json:"auto_move_to_next,omitempty"`
	InternalCompletion bool   `json:"internal_completion,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

// NewSuccessResult builds the success envelope.
func NewSuccessResult(message string, now time.Time) *ExecutionResult {
	return &ExecutionResult{Success: true, Message: message, Timestamp: now}
}

// NewFailureResult builds the failure envelope. Executors other than the
// system executor funnel every internal error through this instead of
// returning it.
func NewFailureResult(message string, now time.Time) *ExecutionResult {
	return &ExecutionResult{Success: false, Message: message, Timestamp: now}
}
