package loads

import (
	"fmt"
	"math"

	"StructFlow/internal/params"
)

const (
	SoilUnitWeightKNM3 = 19.0 // saturated cohesive soil
	MarstonLoadFactor  = 1.5  // trench burial
)

type Input struct {
	DiameterMM          float64 `json:"diameter_mm"`
	SoilDepthM          float64 `json:"soil_depth_m"`
	TrafficLoadKN       float64 `json:"traffic_load_kn"`
	InternalPressureKPa float64 `json:"internal_pressure_kpa"`
}

type Result struct {
	EarthPressureKPa    float64 `json:"earth_pressure_kpa"`
	TrafficPressureKPa  float64 `json:"traffic_pressure_kpa"`
	InternalPressureKPa float64 `json:"internal_pressure_kpa"`
	TotalKPa            float64 `json:"total_kpa"`
	Notes               string  `json:"notes,omitempty"`
}

func Calculate(in Input) (Result, error) {
	if in.DiameterMM <= 0 {
		return Result{}, fmt.Errorf("invalid diameter")
	}
	if in.SoilDepthM < 0 || in.TrafficLoadKN < 0 || in.InternalPressureKPa < 0 {
		return Result{}, fmt.Errorf("invalid load")
	}
	res := breakdown(in.DiameterMM/1000.0, in.SoilDepthM, in.TrafficLoadKN, in.InternalPressureKPa)
	res.Notes = "Simplified Marston earth load; traffic spread over the pipe footprint."
	return res, nil
}

// Breakdown returns the pressures acting on a validated pipe.
func Breakdown(pipe params.PipeParameters, load params.LoadConditions) Result {
	return breakdown(pipe.DiameterMM/1000.0, load.SoilDepthM, load.TrafficLoadKN, load.InternalPressureKPa)
}

func breakdown(diameterM, soilDepthM, trafficKN, internalKPa float64) Result {
	// W_e = gamma * H * Cd
	earth := SoilUnitWeightKNM3 * soilDepthM * MarstonLoadFactor
	// q = P / (pi r^2), footprint of the pipe itself rather than a Boussinesq spread
	traffic := trafficKN / (math.Pi * math.Pow(diameterM/2.0, 2))
	return Result{
		EarthPressureKPa:    earth,
		TrafficPressureKPa:  traffic,
		InternalPressureKPa: internalKPa,
		TotalKPa:            earth + traffic + internalKPa,
	}
}
