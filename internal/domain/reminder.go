package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoanFailure records a loan the reminder scan could not process
type LoanFailure struct {
	LoanID uuid.UUID `json:"loan_id"`
	Error  string    `json:"error"`
}

// RunReport summarises one reminder scan
type RunReport struct {
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Scanned       int           `json:"scanned"`
	Emitted       int           `json:"emitted"`
	Duplicates    int           `json:"duplicates"`
	MarkedOverdue int           `json:"marked_overdue"`
	Failures      []LoanFailure `json:"failures"`
}

func (r *RunReport) Failed() bool {
	return len(r.Failures) > 0
}

// RunSummary is the part of a RunReport shown to API callers. The run spans
// every user, so per-loan failures are reduced to a count.
type RunSummary struct {
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Scanned       int       `json:"scanned"`
	Emitted       int       `json:"emitted"`
	Duplicates    int       `json:"duplicates"`
	MarkedOverdue int       `json:"marked_overdue"`
	Failures      int       `json:"failures"`
}

func (r *RunReport) Summary() *RunSummary {
	return &RunSummary{
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Scanned:       r.Scanned,
		Emitted:       r.Emitted,
		Duplicates:    r.Duplicates,
		MarkedOverdue: r.MarkedOverdue,
		Failures:      len(r.Failures),
	}
}
