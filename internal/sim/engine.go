// Package sim runs the hydraulic and structural checks on a validated design
// schema and combines them into one verdict. Run never panics and never returns
// an error: every failure is an ERROR result with a reason.
package sim

import (
	"fmt"
	"time"

	"StructFlow/internal/calc/flow"
	"StructFlow/internal/calc/stress"
	"StructFlow/internal/params"
	"StructFlow/internal/status"
)

const (
	ReasonMissingSchema = "schema is null/missing"
	ReasonNotValidated  = "schema not validated: caller must run the validator first"
)

// Simulator is the boundary where a different physical domain can be plugged in.
type Simulator interface {
	Run(schema *params.DesignSchema) Result
}

type (
	FlowFunc   func(params.PipeParameters, *float64) flow.Result
	StressFunc func(params.PipeParameters, params.LoadConditions) stress.Result
)

// Engine is the drainage pipe Simulator.
type Engine struct {
	flow   FlowFunc
	stress StressFunc
	now    func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithCalculators(f FlowFunc, s StressFunc) Option {
	return func(e *Engine) {
		e.flow = f
		e.stress = s
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{flow: flow.Calculate, stress: stress.Calculate, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Simulator = (*Engine)(nil)

// Run refuses unvalidated schemas rather than validating them itself.
func (e *Engine) Run(schema *params.DesignSchema) Result {
	if schema == nil {
		return Error("UNKNOWN", ReasonMissingSchema, e.now())
	}
	if !schema.IsValidated {
		return Error(schema.PipeID(), ReasonNotValidated, e.now())
	}
	if schema.Pipe == nil || schema.Load == nil {
		return Error(schema.PipeID(), "schema is flagged validated but lacks pipe or load block", e.now())
	}

	fr, sr, err := e.calculate(schema)
	if err != nil {
		return Error(schema.PipeID(), "unexpected calculation error: "+err.Error(), e.now())
	}

	overall := status.Worst(fr.Status, sr.Status)
	warnings := append([]string{}, fr.Warnings...)
	// Flow warnings are reported once, at result level.
	fr.Warnings = nil
	if fr.Status.IsAlert() {
		warnings = append(warnings, fmt.Sprintf("flow status: %s", fr.Status))
	}
	if sr.Status.IsAlert() {
		warnings = append(warnings, fmt.Sprintf("stress status: %s", sr.Status))
	}

	res := Result{
		PipeID:        schema.Pipe.ID,
		CalculatedAt:  e.now().UTC().Format(time.RFC3339Nano),
		Flow:          &fr,
		Stress:        &sr,
		Warnings:      warnings,
		OverallStatus: overall,
		Summary:       summary(overall, fr, sr),
	}
	if overall == status.Error {
		res.ErrorReason = fmt.Sprintf("unrecognised sub-result status (flow %q, stress %q)", fr.Status, sr.Status)
	}
	return res
}

func (e *Engine) calculate(schema *params.DesignSchema) (fr flow.Result, sr stress.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fr = e.flow(*schema.Pipe, schema.DesignFlowM3S)
	sr = e.stress(*schema.Pipe, *schema.Load)
	return fr, sr, nil
}

func summary(overall status.Level, fr flow.Result, sr stress.Result) string {
	switch overall {
	case status.Normal:
		return fmt.Sprintf("Within design criteria. Velocity %.2f m/s, safety factor %.2f.", fr.VelocityMS, sr.SafetyFactor)
	case status.Warning:
		return fmt.Sprintf("Attention required. Flow status: %s, stress safety factor: %.2f (borderline).", fr.Status, sr.SafetyFactor)
	case status.Danger:
		return fmt.Sprintf("Design criteria exceeded, immediate review required. Flow: %s, stress: %s.", fr.Status, sr.Status)
	default:
		return "Simulation error: check the parameters."
	}
}
