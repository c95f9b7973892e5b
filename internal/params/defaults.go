package params

import "time"

// Conservative defaults applied to fields that could not be determined.
const (
	DefaultDiameterMM           = 300.0
	DefaultLengthM              = 50.0
	DefaultMaterial             = MaterialConcrete
	DefaultSlope                = 0.005
	DefaultRoughnessCoefficient = 0.013

	DefaultSoilDepthM          = 2.0
	DefaultTrafficLoadKN       = 50.0
	DefaultInternalPressureKPa = 10.0

	DefaultFlowType = FlowGravity
	DefaultFluid    = FluidWastewater
)

// GeneratePipeID returns a timestamp based identifier such as PIPE-20260214093000.
func GeneratePipeID(now time.Time) string {
	return "PIPE-" + now.UTC().Format("20060102150405")
}

// Default returns a fully backfilled schema.
func Default(now time.Time) DesignSchema {
	return DesignSchema{
		SchemaVersion: SchemaVersion,
		CreatedAt:     now.UTC().Format(time.RFC3339Nano),
		Pipe: &PipeParameters{
			ID:                   GeneratePipeID(now),
			DiameterMM:           DefaultDiameterMM,
			LengthM:              DefaultLengthM,
			Material:             DefaultMaterial,
			Slope:                DefaultSlope,
			RoughnessCoefficient: DefaultRoughnessCoefficient,
		},
		Load: &LoadConditions{
			SoilDepthM:          DefaultSoilDepthM,
			TrafficLoadKN:       DefaultTrafficLoadKN,
			InternalPressureKPa: DefaultInternalPressureKPa,
		},
		Environment: &EnvironmentConditions{
			FlowType: DefaultFlowType,
			Fluid:    DefaultFluid,
		},
	}
}
