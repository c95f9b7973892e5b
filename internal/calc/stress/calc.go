// Package stress checks ring (hoop) stress of a buried pipe against a per
// material allowable stress (KS D 4301 for concrete).
//
//	sigma = (W_total * D) / (2 * t),  t = 0.1 * D
//
// SF = allowable / sigma; SAFE at SF >= 2.0, WARNING at 1.5 <= SF < 2.0, else DANGER.
package stress

import (
	"math"

	"StructFlow/internal/calc/loads"
	"StructFlow/internal/params"
	"StructFlow/internal/status"
)

const (
	WallThicknessRatio = 0.10

	SafetyFactorSafe    = 2.0
	SafetyFactorWarning = 1.5
)

// Allowable stress by material (kPa).
var allowableKPa = map[params.Material]float64{
	params.MaterialConcrete:    400,
	params.MaterialDuctileIron: 1500,
	params.MaterialPVC:         200,
	params.MaterialSteel:       1200,
	params.MaterialHDPE:        180,
}

type Result struct {
	MaxStressKPa float64      `json:"max_stress_kpa"`
	SafetyFactor float64      `json:"safety_factor"`
	Status       status.Level `json:"status"`
}

// AllowableStressKPa falls back to concrete for unknown or empty materials.
func AllowableStressKPa(m params.Material) float64 {
	if v, ok := allowableKPa[m.Normalize()]; ok {
		return v
	}
	return allowableKPa[params.MaterialConcrete]
}

// HoopStressKPa is the unrounded ring stress for validated input.
func HoopStressKPa(pipe params.PipeParameters, load params.LoadConditions) float64 {
	d := pipe.DiameterMM / 1000.0
	t := d * WallThicknessRatio
	total := loads.Breakdown(pipe, load).TotalKPa
	return (total * d) / (2.0 * t)
}

// MaxSafetyFactor caps the reported factor; an unloaded pipe has no finite one.
const MaxSafetyFactor = 999.0

func Calculate(pipe params.PipeParameters, load params.LoadConditions) Result {
	sigma := HoopStressKPa(pipe, load)
	sf := MaxSafetyFactor
	if sigma > 0 {
		sf = math.Min(AllowableStressKPa(pipe.Material)/sigma, MaxSafetyFactor)
	}
	return Result{
		MaxStressKPa: round(sigma, 2),
		SafetyFactor: round(sf, 3),
		Status:       classify(sf),
	}
}

func classify(sf float64) status.Level {
	switch {
	case sf >= SafetyFactorSafe:
		return status.Safe
	case sf >= SafetyFactorWarning:
		return status.Warning
	default:
		return status.Danger
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
