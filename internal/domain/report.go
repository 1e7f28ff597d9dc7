package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunReport records a completed run. It is logged and, when notifications are
// enabled, published as JSON.
type RunReport struct {
	RunID       string    `json:"run_id"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Threshold   float64   `json:"threshold"`
	Shape       Shape     `json:"shape"`
	FirstTime   string    `json:"first_time,omitempty"`
	LastTime    string    `json:"last_time,omitempty"`
	Summary     Summary   `json:"summary"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewRunReport builds the report for a bundle written to output.
func NewRunReport(b ResultBundle, input, output string) RunReport {
	r := RunReport{
		RunID:       uuid.NewString(),
		Input:       input,
		Output:      output,
		Threshold:   b.Attributes.Threshold,
		Shape:       b.Shape,
		Summary:     Summarize(b),
		CompletedAt: clock.Now().UTC(),
	}
	if n := len(b.Times); n > 0 {
		r.FirstTime = b.Times[0]
		r.LastTime = b.Times[n-1]
	}
	return r
}
