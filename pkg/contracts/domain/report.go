package domain

import (
	"time"
)

// TableType identifies one of the exported tables
type TableType string

const (
	TableMonthly  TableType = "monthly"
	TableDaily    TableType = "daily"
	TableProg     TableType = "prog"
	TableGlossary TableType = "glossary"
)

// StageStatus represents the outcome of a pipeline stage
type StageStatus string

const (
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// StageResult records what one import/enrich/export stage produced.
type StageResult struct {
	Table    TableType     `json:"table"`
	Status   StageStatus   `json:"status"`
	Rows     int           `json:"rows"`
	Features []string      `json:"features,omitempty"`
	Files    []string      `json:"files"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunReport summarizes a single pipeline run.
type RunReport struct {
	RunID      string        `json:"run_id" validate:"required,uuid"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageResult `json:"stages"`
}

// TotalRows returns the number of rows exported across all stages.
func (r *RunReport) TotalRows() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Rows
	}
	return total
}
