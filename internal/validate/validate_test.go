package validate

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructFlow/internal/params"
)

func validSchema() params.DesignSchema {
	return params.Default(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC))
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	out := Validate(validSchema())
	assert.True(t, out.Valid, out.String())
	assert.Empty(t, out.Errors)
	assert.NotNil(t, out.Errors)
	assert.Equal(t, "VALID", out.String())
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	s := validSchema()
	s.Pipe.DiameterMM = -1
	s.Pipe.Slope = 99
	s.Pipe.Material = "wood"

	out := Validate(s)
	require.False(t, out.Valid)
	require.GreaterOrEqual(t, len(out.Errors), 3)

	find := func(field string) string {
		for _, e := range out.Errors {
			if strings.Contains(e, field) {
				return e
			}
		}
		return ""
	}
	assert.Contains(t, find("diameter"), "-1")
	assert.Contains(t, find("slope"), "99")
	assert.Contains(t, find("material"), "wood")
}

func TestValidate_MessageOrder(t *testing.T) {
	s := validSchema()
	s.Pipe.ID = ""
	s.Pipe.RoughnessCoefficient = 1
	s.Load.SoilDepthM = 31
	s.Environment.Fluid = "oil"
	s.Environment.FlowType = "siphon"

	out := Validate(s)
	require.Len(t, out.Errors, 5)
	assert.Contains(t, out.Errors[0], "pipe.id")
	assert.Contains(t, out.Errors[1], "pipe.roughness_coefficient")
	assert.Contains(t, out.Errors[2], "load.soil_depth_m")
	assert.Contains(t, out.Errors[3], "environment.flow_type")
	assert.Contains(t, out.Errors[4], "environment.fluid")
}

func TestValidate_MissingBlocks(t *testing.T) {
	out := Validate(params.DesignSchema{})
	require.Len(t, out.Errors, 3)
	assert.Contains(t, out.Errors[0], "pipe parameter block is missing")
	assert.Contains(t, out.Errors[1], "load parameter block is missing")
	assert.Contains(t, out.Errors[2], "environment parameter block is missing")
}

func TestPipe_Bounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *params.PipeParameters)
		field  string
	}{
		{"diameter below", func(p *params.PipeParameters) { p.DiameterMM = 99.9 }, "pipe.diameter_mm"},
		{"diameter above", func(p *params.PipeParameters) { p.DiameterMM = 3000.1 }, "pipe.diameter_mm"},
		{"length zero", func(p *params.PipeParameters) { p.LengthM = 0 }, "pipe.length_m"},
		{"length above", func(p *params.PipeParameters) { p.LengthM = 10001 }, "pipe.length_m"},
		{"slope below", func(p *params.PipeParameters) { p.Slope = 0.0009 }, "pipe.slope"},
		{"roughness below", func(p *params.PipeParameters) { p.RoughnessCoefficient = 0.004 }, "pipe.roughness_coefficient"},
		{"diameter NaN", func(p *params.PipeParameters) { p.DiameterMM = math.NaN() }, "pipe.diameter_mm"},
		{"slope Inf", func(p *params.PipeParameters) { p.Slope = math.Inf(1) }, "pipe.slope"},
		{"length NaN", func(p *params.PipeParameters) { p.LengthM = math.NaN() }, "pipe.length_m"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := *validSchema().Pipe
			c.mutate(&p)
			errs := Pipe(&p)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], c.field)
		})
	}
}

func TestPipe_InclusiveEdges(t *testing.T) {
	p := *validSchema().Pipe
	p.DiameterMM = 100
	p.LengthM = 10000
	p.Slope = 0.2
	p.RoughnessCoefficient = 0.005
	p.Material = "HDPE"
	assert.Empty(t, Pipe(&p))

	p.DiameterMM = 3000
	p.Slope = 0.001
	p.RoughnessCoefficient = 0.05
	assert.Empty(t, Pipe(&p))
}

func TestLoad_Bounds(t *testing.T) {
	assert.Empty(t, Load(&params.LoadConditions{}))
	assert.Empty(t, Load(&params.LoadConditions{SoilDepthM: 30, TrafficLoadKN: 500, InternalPressureKPa: 1000}))

	errs := Load(&params.LoadConditions{SoilDepthM: -0.1, TrafficLoadKN: 501, InternalPressureKPa: -5})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "load.soil_depth_m")
	assert.Contains(t, errs[1], "load.traffic_load_kn")
	assert.Contains(t, errs[2], "load.internal_pressure_kpa")
}

func TestApply_SetsFlag(t *testing.T) {
	s := validSchema()
	out := Apply(&s)
	assert.True(t, out.Valid)
	assert.True(t, s.IsValidated)

	s.Pipe.DiameterMM = 50
	out = Apply(&s)
	assert.False(t, out.Valid)
	assert.False(t, s.IsValidated)

	assert.False(t, Apply(nil).Valid)
}
