package recommend

import (
	"fmt"
	"math"

	"StructFlow/internal/params"
	"StructFlow/internal/validate"
)

const DefaultMinVelocityMS = 0.6

type SlopeInput struct {
	DiameterMM           float64 `json:"diameter_mm"`
	RoughnessCoefficient float64 `json:"roughness_coefficient"`
	MinVelocityMS        float64 `json:"min_velocity_ms"`
}

type SlopeResult struct {
	MinSlope float64 `json:"min_slope"`
	Clamped  bool    `json:"clamped"`
	Notes    string  `json:"notes"`
}

// MinSlope inverts Manning's equation for the full-bore slope that reaches
// minVelocity, S = (v*n / R^(2/3))^2 with R = D/4, and clamps the answer to the
// accepted slope range.
func MinSlope(diameterMM, n, minVelocity float64) (slope float64, clamped bool) {
	r := diameterMM / 1000.0 / 4.0
	s := math.Pow(minVelocity*n/math.Pow(r, 2.0/3.0), 2)
	switch {
	case s < validate.MinSlope:
		return validate.MinSlope, true
	case s > validate.MaxSlope:
		return validate.MaxSlope, true
	}
	return s, false
}

func Slope(in SlopeInput) (SlopeResult, error) {
	if in.RoughnessCoefficient == 0 {
		in.RoughnessCoefficient = params.DefaultRoughnessCoefficient
	}
	if in.MinVelocityMS == 0 {
		in.MinVelocityMS = DefaultMinVelocityMS
	}
	if in.DiameterMM < validate.MinDiameterMM || in.DiameterMM > validate.MaxDiameterMM {
		return SlopeResult{}, fmt.Errorf("diameter_mm must be %g-%g", validate.MinDiameterMM, validate.MaxDiameterMM)
	}
	if in.RoughnessCoefficient < 0 || in.MinVelocityMS < 0 {
		return SlopeResult{}, fmt.Errorf("invalid input")
	}
	s, clamped := MinSlope(in.DiameterMM, in.RoughnessCoefficient, in.MinVelocityMS)
	notes := fmt.Sprintf("Minimum slope for %.2f m/s self-cleansing velocity flowing full.", in.MinVelocityMS)
	if clamped {
		notes += " Clamped to the accepted slope range."
	}
	return SlopeResult{MinSlope: s, Clamped: clamped, Notes: notes}, nil
}
