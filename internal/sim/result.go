package sim

import (
	"time"

	"StructFlow/internal/calc/flow"
	"StructFlow/internal/calc/stress"
	"StructFlow/internal/status"
)

// Result is a read-only snapshot of one simulation run.
type Result struct {
	PipeID        string         `json:"pipe_id"`
	CalculatedAt  string         `json:"calculated_at"`
	Flow          *flow.Result   `json:"flow,omitempty"`
	Stress        *stress.Result `json:"stress,omitempty"`
	Warnings      []string       `json:"warnings"`
	OverallStatus status.Level   `json:"overall_status"`
	Summary       string         `json:"summary,omitempty"`
	ErrorReason   string         `json:"error_reason,omitempty"`
}

// Error builds an ERROR result carrying reason.
func Error(pipeID, reason string, at time.Time) Result {
	return Result{
		PipeID:        pipeID,
		CalculatedAt:  at.UTC().Format(time.RFC3339Nano),
		Warnings:      []string{},
		OverallStatus: status.Error,
		Summary:       "Simulation error: " + reason,
		ErrorReason:   reason,
	}
}

func (r Result) IsError() bool { return r.OverallStatus == status.Error }
