package merge

import (
	"strings"
	"time"

	"StructFlow/internal/params"
)

// backfill sets conservative defaults on every field still at its zero state,
// including zeros the overlay supplied.
func backfill(s *params.DesignSchema, now time.Time) {
	if blank(s.SchemaVersion) {
		s.SchemaVersion = params.SchemaVersion
	}
	if blank(s.CreatedAt) {
		s.CreatedAt = now.UTC().Format(time.RFC3339Nano)
	}
	if s.Pipe == nil {
		s.Pipe = &params.PipeParameters{}
	}
	if s.Load == nil {
		s.Load = &params.LoadConditions{}
	}
	if s.Environment == nil {
		s.Environment = &params.EnvironmentConditions{}
	}

	p := s.Pipe
	if blank(p.ID) {
		p.ID = params.GeneratePipeID(now)
	}
	num(&p.DiameterMM, params.DefaultDiameterMM)
	num(&p.LengthM, params.DefaultLengthM)
	if blank(string(p.Material)) {
		p.Material = params.DefaultMaterial
	}
	num(&p.Slope, params.DefaultSlope)
	num(&p.RoughnessCoefficient, params.DefaultRoughnessCoefficient)

	l := s.Load
	num(&l.SoilDepthM, params.DefaultSoilDepthM)
	num(&l.TrafficLoadKN, params.DefaultTrafficLoadKN)
	num(&l.InternalPressureKPa, params.DefaultInternalPressureKPa)

	e := s.Environment
	if blank(string(e.FlowType)) {
		e.FlowType = params.DefaultFlowType
	}
	if blank(string(e.Fluid)) {
		e.Fluid = params.DefaultFluid
	}
}

func num(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
