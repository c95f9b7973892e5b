// Package validate checks a design schema against engineering ranges.
// Every violated constraint is reported; checking never stops at the first one.
package validate

import (
	"fmt"
	"math"
	"strings"

	"StructFlow/internal/params"
)

// Ranges. Diameter and slope bounds follow KDS 57 17 00 practice.
const (
	MinDiameterMM = 100.0
	MaxDiameterMM = 3000.0
	MaxLengthM    = 10000.0
	MinSlope      = 0.001
	MaxSlope      = 0.2
	MinRoughness  = 0.005
	MaxRoughness  = 0.05

	MaxSoilDepthM          = 30.0
	MaxTrafficLoadKN       = 500.0
	MaxInternalPressureKPa = 1000.0
)

type Outcome struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}

// String renders the outcome on one line for logs.
func (o Outcome) String() string {
	if o.Valid {
		return "VALID"
	}
	return "INVALID: " + strings.Join(o.Errors, " | ")
}

func outcome(errs []string) Outcome {
	if errs == nil {
		errs = []string{}
	}
	return Outcome{Valid: len(errs) == 0, Errors: errs}
}

// Validate checks the pipe, load and environment blocks in that order.
func Validate(s params.DesignSchema) Outcome {
	var errs []string
	errs = append(errs, Pipe(s.Pipe)...)
	errs = append(errs, Load(s.Load)...)
	errs = append(errs, Environment(s.Environment)...)
	return outcome(errs)
}

// Apply validates s and records the verdict in s.IsValidated.
func Apply(s *params.DesignSchema) Outcome {
	if s == nil {
		return outcome([]string{"schema is missing."})
	}
	out := Validate(*s)
	s.IsValidated = out.Valid
	return out
}

func Pipe(p *params.PipeParameters) []string {
	if p == nil {
		return []string{"pipe parameter block is missing."}
	}
	var errs []string
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, "pipe.id is required.")
	}
	if !within(p.DiameterMM, MinDiameterMM, MaxDiameterMM) {
		errs = append(errs, fmt.Sprintf("pipe.diameter_mm must be %g-%g mm. Got: %g", MinDiameterMM, MaxDiameterMM, p.DiameterMM))
	}
	if !finite(p.LengthM) || p.LengthM <= 0 || p.LengthM > MaxLengthM {
		errs = append(errs, fmt.Sprintf("pipe.length_m must be greater than 0 and at most %g m. Got: %g", MaxLengthM, p.LengthM))
	}
	if !p.Material.IsValid() {
		errs = append(errs, fmt.Sprintf("pipe.material must be one of [%s]. Got: '%s'", join(params.Materials), p.Material))
	}
	if !within(p.Slope, MinSlope, MaxSlope) {
		errs = append(errs, fmt.Sprintf("pipe.slope must be %g-%g. Got: %g", MinSlope, MaxSlope, p.Slope))
	}
	if !within(p.RoughnessCoefficient, MinRoughness, MaxRoughness) {
		errs = append(errs, fmt.Sprintf("pipe.roughness_coefficient must be %g-%g. Got: %g", MinRoughness, MaxRoughness, p.RoughnessCoefficient))
	}
	return errs
}

func Load(l *params.LoadConditions) []string {
	if l == nil {
		return []string{"load parameter block is missing."}
	}
	var errs []string
	if !within(l.SoilDepthM, 0, MaxSoilDepthM) {
		errs = append(errs, fmt.Sprintf("load.soil_depth_m must be 0-%g m. Got: %g", MaxSoilDepthM, l.SoilDepthM))
	}
	if !within(l.TrafficLoadKN, 0, MaxTrafficLoadKN) {
		errs = append(errs, fmt.Sprintf("load.traffic_load_kn must be 0-%g kN. Got: %g", MaxTrafficLoadKN, l.TrafficLoadKN))
	}
	if !within(l.InternalPressureKPa, 0, MaxInternalPressureKPa) {
		errs = append(errs, fmt.Sprintf("load.internal_pressure_kpa must be 0-%g kPa. Got: %g", MaxInternalPressureKPa, l.InternalPressureKPa))
	}
	return errs
}

func Environment(e *params.EnvironmentConditions) []string {
	if e == nil {
		return []string{"environment parameter block is missing."}
	}
	var errs []string
	if !e.FlowType.IsValid() {
		errs = append(errs, fmt.Sprintf("environment.flow_type must be one of [%s]. Got: '%s'", join(params.FlowTypes), e.FlowType))
	}
	if !e.Fluid.IsValid() {
		errs = append(errs, fmt.Sprintf("environment.fluid must be one of [%s]. Got: '%s'", join(params.Fluids), e.Fluid))
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// within is false for NaN and infinities.
func within(v, lo, hi float64) bool {
	return finite(v) && v >= lo && v <= hi
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
