// Package params holds the design parameter model of a buried drainage pipe.
// Units are carried in field names: _mm and _m for lengths, _kn and _kpa for loads.
package params

import "strings"

const SchemaVersion = "1.0"

type Material string

const (
	MaterialConcrete    Material = "concrete"
	MaterialDuctileIron Material = "ductile_iron"
	MaterialPVC         Material = "pvc"
	MaterialSteel       Material = "steel"
	MaterialHDPE        Material = "hdpe"
)

// Materials lists the accepted pipe materials in declaration order.
var Materials = []Material{MaterialConcrete, MaterialDuctileIron, MaterialPVC, MaterialSteel, MaterialHDPE}

// Normalize lowercases and trims the material name.
func (m Material) Normalize() Material {
	return Material(strings.ToLower(strings.TrimSpace(string(m))))
}

func (m Material) IsValid() bool {
	n := m.Normalize()
	for _, known := range Materials {
		if n == known {
			return true
		}
	}
	return false
}

type FlowType string

const (
	FlowGravity  FlowType = "gravity"
	FlowPressure FlowType = "pressure"
)

var FlowTypes = []FlowType{FlowGravity, FlowPressure}

func (f FlowType) IsValid() bool {
	n := FlowType(strings.ToLower(strings.TrimSpace(string(f))))
	return n == FlowGravity || n == FlowPressure
}

type Fluid string

const (
	FluidWastewater Fluid = "wastewater"
	FluidStormwater Fluid = "stormwater"
	FluidCleanWater Fluid = "clean_water"
)

var Fluids = []Fluid{FluidWastewater, FluidStormwater, FluidCleanWater}

func (f Fluid) IsValid() bool {
	n := Fluid(strings.ToLower(strings.TrimSpace(string(f))))
	for _, known := range Fluids {
		if n == known {
			return true
		}
	}
	return false
}

type PipeParameters struct {
	ID                   string   `json:"id"`
	DiameterMM           float64  `json:"diameter_mm"`
	LengthM              float64  `json:"length_m"`
	Material             Material `json:"material"`
	Slope                float64  `json:"slope"`                 // rise/run, 0.005 = 0.5%
	RoughnessCoefficient float64  `json:"roughness_coefficient"` // Manning n
}

type LoadConditions struct {
	SoilDepthM          float64 `json:"soil_depth_m"`
	TrafficLoadKN       float64 `json:"traffic_load_kn"`
	InternalPressureKPa float64 `json:"internal_pressure_kpa"`
}

type EnvironmentConditions struct {
	FlowType FlowType `json:"flow_type"`
	Fluid    Fluid    `json:"fluid"`
}

// DesignSchema is the aggregate root handed from intake to the simulation.
// A nil block means the block is missing entirely.
type DesignSchema struct {
	SchemaVersion string                 `json:"schema_version"`
	CreatedAt     string                 `json:"created_at"`
	Pipe          *PipeParameters        `json:"pipe,omitempty"`
	Load          *LoadConditions        `json:"load,omitempty"`
	Environment   *EnvironmentConditions `json:"environment,omitempty"`

	// DesignFlowM3S is the externally supplied design flow. Nil means full-bore.
	DesignFlowM3S *float64 `json:"design_flow_m3s,omitempty"`

	// IsValidated is set by validate.Apply only.
	IsValidated bool `json:"is_validated"`

	// ExtractionFailReason explains why an upstream extraction produced no usable values.
	ExtractionFailReason string `json:"llm_parse_fail_reason,omitempty"`
}

// PipeID returns the pipe identifier or "UNKNOWN" when no pipe block is set.
func (s *DesignSchema) PipeID() string {
	if s == nil || s.Pipe == nil || strings.TrimSpace(s.Pipe.ID) == "" {
		return "UNKNOWN"
	}
	return s.Pipe.ID
}

// Clone returns a deep copy; no pointer is shared with the receiver.
func (s DesignSchema) Clone() DesignSchema {
	out := s
	if s.Pipe != nil {
		p := *s.Pipe
		out.Pipe = &p
	}
	if s.Load != nil {
		l := *s.Load
		out.Load = &l
	}
	if s.Environment != nil {
		e := *s.Environment
		out.Environment = &e
	}
	if s.DesignFlowM3S != nil {
		q := *s.DesignFlowM3S
		out.DesignFlowM3S = &q
	}
	return out
}
