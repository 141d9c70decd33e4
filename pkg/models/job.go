// Package models contains shared data models used across the queueview codebase.
package models

// Progress values derived from an execution record's end time.
const (
	ProgressActive   = "Active"
	ProgressFinished = "Finished"
)

// DurationUnavailable is rendered for jobs that have not finished yet.
const DurationUnavailable = "N/A"

// ExecutionRecord is one row of the Active Queue. Records are written by the
// external execution system; queueview only reads them.
// Nil pointers mean the source cell was empty.
type ExecutionRecord struct {
	JobID          string  `db:"job_id"           json:"job_id"`
	WorkflowTypeID *string `db:"workflow_type_id" json:"workflow_type_id,omitempty"`
	SubmittedBy    string  `db:"submitted_by"     json:"submitted_by"`
	StartTime      string  `db:"start_time"       json:"start_time"`
	EndTime        *string `db:"end_time"         json:"end_time,omitempty"`
	StatusMessage  *string `db:"status_message"   json:"status_message,omitempty"`
	OutputResult   *string `db:"output_result"    json:"output_result,omitempty"`
	ErrorMessage   *string `db:"error_message"    json:"error_message,omitempty"`
}

// WorkflowType is one row of the Workflow Catalog.
type WorkflowType struct {
	WorkflowTypeID string  `db:"workflow_type_id" json:"workflow_type_id"`
	WorkflowType   *string `db:"workflow_type"    json:"workflow_type"`
	DependentOn    *string `db:"dependent_on"     json:"dependent_on,omitempty"`
	WorkflowTask   *string `db:"workflow_task"    json:"workflow_task,omitempty"`

	// HasDependentOn and HasWorkflowTask record whether the catalog exposes
	// the optional columns at all, as opposed to an empty cell.
	HasDependentOn  bool `db:"-" json:"-"`
	HasWorkflowTask bool `db:"-" json:"-"`
}

// EnrichedJob is the presentation record returned to API clients.
// It is computed per request and never persisted.
type EnrichedJob struct {
	JobID        string     `json:"job_id"`
	WorkflowType *string    `json:"workflow_type"`
	User         string     `json:"user"`
	StartTime    string     `json:"start_time"`
	Duration     string     `json:"duration"`
	Progress     string     `json:"progress"`
	Status       *string    `json:"status"`
	Details      JobDetails `json:"details"`
}

// JobDetails carries the free-text fields of a job. Missing values are
// rendered as empty strings; the catalog-sourced fields are omitted when the
// catalog does not provide them.
type JobDetails struct {
	ErrorMessage string  `json:"error_message"`
	OutputResult string  `json:"output_result"`
	WorkflowTask *string `json:"workflow_task,omitempty"`
	DependentOn  *string `json:"dependent_on,omitempty"`
}
