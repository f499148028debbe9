package models

import "time"

// OnboardingStatus is the lifecycle state of an onboarding case.
type OnboardingStatus string

const (
	OnboardingStatusActive    OnboardingStatus = "Active"
	OnboardingStatusCompleted OnboardingStatus = "Completed"
)

// Onboarding is a single case tracked through the ordered stages of a
// workflow.
type Onboarding struct {
	ID             int64            `json:"id"`
	CaseName       string           `json:"case_name"`
	WorkflowID     int64            `json:"workflow_id"`
	Status         OnboardingStatus `json:"status"`
	CurrentStageID int64            `json:"current_stage_id"`
	CompletionRate int              `json:"completion_rate"`
	AssigneeID     *int64           `json:"assignee_id,omitempty"`
	AssigneeName   string           `json:"assignee_name,omitempty"`
	Team           string           `json:"team,omitempty"`
	TenantID       string           `json:"tenant_id"`
	StageProgress  []StageProgress  `json:"stage_progress"`
	Notes          string           `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// StageProgress records one stage's completion state for an onboarding.
// Invariant: when the owning onboarding is Completed, every progress entry
// ordered at or before the stage it completed on must report IsCompleted.
type StageProgress struct {
	StageID       int64      `json:"stage_id"`
	StageName     string     `json:"stage_name,omitempty"`
	StageOrder    int        `json:"stage_order"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`
	CompletedBy   string     `json:"completed_by,omitempty"`
	CompletedByID *int64     `json:"completed_by_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// ProgressFor returns the progress entry for a stage, or nil.
func (o *Onboarding) ProgressFor(stageID int64) *StageProgress {
	for i := range o.StageProgress {
		if o.StageProgress[i].StageID == stageID {
			return &o.StageProgress[i]
		}
	}

	return nil
}

// NextStageID returns the stage ordered immediately after stageID, or zero
// when stageID is the last stage.
func (o *Onboarding) NextStageID(stageID int64) int64 {
	current := o.ProgressFor(stageID)
	if current == nil {
		return 0
	}

	var next *StageProgress

	for i := range o.StageProgress {
		candidate := &o.StageProgress[i]
		if candidate.StageOrder <= current.StageOrder {
			continue
		}

		if next == nil || candidate.StageOrder < next.StageOrder {
			next = candidate
		}
	}

	if next == nil {
		return 0
	}

	return next.StageID
}
