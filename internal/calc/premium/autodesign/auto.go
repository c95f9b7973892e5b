package autodesign

import (
	"errors"
	"fmt"
	"strings"

	"StructFlow/internal/calc/flow"
	"StructFlow/internal/calc/stress"
	"StructFlow/internal/params"
	"StructFlow/internal/status"
	"StructFlow/internal/validate"
)

// Catalogue lists nominal diameters in mm, ascending.
var Catalogue = []float64{
	100, 150, 200, 250, 300, 350, 400, 450, 500, 600, 700, 800, 900, 1000,
	1100, 1200, 1350, 1500, 1650, 1800, 2000, 2200, 2400, 2600, 2800, 3000,
}

var ErrNoDiameter = errors.New("no catalogue diameter satisfies flow and stress criteria")

type Input struct {
	Material             params.Material        `json:"material"`
	LengthM              float64                `json:"length_m"`
	Slope                float64                `json:"slope"`
	RoughnessCoefficient float64                `json:"roughness_coefficient"`
	Load                 *params.LoadConditions `json:"load,omitempty"`
	DesignFlowM3S        float64                `json:"design_flow_m3s"`
}

type Result struct {
	DiameterMM float64       `json:"diameter_mm"`
	Flow       flow.Result   `json:"flow"`
	Stress     stress.Result `json:"stress"`
	Checked    int           `json:"checked"`
	Notes      string        `json:"notes"`
}

// Pipe returns the smallest catalogue diameter for which the flow status is
// NORMAL and the stress status SAFE.
func Pipe(in Input) (Result, error) {
	if in.DesignFlowM3S <= 0 {
		return Result{}, errors.New("design_flow_m3s must be positive")
	}
	pipe, load := in.withDefaults()
	if errs := append(validate.Load(&load), validate.Pipe(&pipe)...); len(errs) > 0 {
		return Result{}, fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}

	for i, d := range Catalogue {
		pipe.DiameterMM = d
		fr := flow.Calculate(pipe, &in.DesignFlowM3S)
		sr := stress.Calculate(pipe, load)
		if fr.Status == status.Normal && sr.Status == status.Safe {
			return Result{
				DiameterMM: d,
				Flow:       fr,
				Stress:     sr,
				Checked:    i + 1,
				Notes:      fmt.Sprintf("Smallest %s pipe for %.3f m3/s.", pipe.Material, in.DesignFlowM3S),
			}, nil
		}
	}
	return Result{Checked: len(Catalogue)}, ErrNoDiameter
}

func (in Input) withDefaults() (params.PipeParameters, params.LoadConditions) {
	pipe := params.PipeParameters{
		ID:                   "AUTODESIGN",
		DiameterMM:           Catalogue[0],
		LengthM:              in.LengthM,
		Material:             in.Material.Normalize(),
		Slope:                in.Slope,
		RoughnessCoefficient: in.RoughnessCoefficient,
	}
	if pipe.LengthM == 0 {
		pipe.LengthM = params.DefaultLengthM
	}
	if pipe.Material == "" {
		pipe.Material = params.DefaultMaterial
	}
	if pipe.Slope == 0 {
		pipe.Slope = params.DefaultSlope
	}
	if pipe.RoughnessCoefficient == 0 {
		pipe.RoughnessCoefficient = params.DefaultRoughnessCoefficient
	}
	load := params.LoadConditions{
		SoilDepthM:          params.DefaultSoilDepthM,
		TrafficLoadKN:       params.DefaultTrafficLoadKN,
		InternalPressureKPa: params.DefaultInternalPressureKPa,
	}
	if in.Load != nil {
		load = *in.Load
	}
	return pipe, load
}
