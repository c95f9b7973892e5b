package flow

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructFlow/internal/params"
	"StructFlow/internal/status"
)

func standardPipe() params.PipeParameters {
	return params.PipeParameters{
		ID:                   "PIPE-001",
		DiameterMM:           300,
		LengthM:              50,
		Material:             params.MaterialConcrete,
		Slope:                0.005,
		RoughnessCoefficient: 0.013,
	}
}

func ptr(v float64) *float64 { return &v }

func TestCalculate_NoDesignFlowIsFull(t *testing.T) {
	res := Calculate(standardPipe(), nil)
	assert.InDelta(t, 1.0, res.FillRatio, 0.005)
	assert.Equal(t, status.Danger, res.Status)
	assert.Greater(t, res.FlowRateM3S, 0.0)
	assert.InDelta(t, 0.967, res.VelocityMS, 0.01)
}

func TestCalculate_HalfCapacityIsNormal(t *testing.T) {
	full := Full(standardPipe())
	res := Calculate(standardPipe(), ptr(0.5*full.FlowRateM3S))
	assert.Equal(t, status.Normal, res.Status)
	assert.Less(t, res.FillRatio, FillRatioWarning)
	assert.InDelta(t, 0.5, res.FillRatio, 1e-4)
}

func TestCalculate_FillThresholds(t *testing.T) {
	full := Full(standardPipe()).FlowRateM3S
	cases := []struct {
		fill float64
		want status.Level
	}{
		{0.10, status.Normal},
		{0.79, status.Normal},
		{0.801, status.Warning},
		{0.94, status.Warning},
		{0.951, status.Danger},
		{1.50, status.Danger},
	}
	for _, c := range cases {
		res := Calculate(standardPipe(), ptr(c.fill*full))
		assert.Equal(t, c.want, res.Status, "fill %.2f", c.fill)
	}
}

func TestCalculate_FillRatioClamped(t *testing.T) {
	full := Full(standardPipe()).FlowRateM3S
	assert.Equal(t, 1.0, Calculate(standardPipe(), ptr(3*full)).FillRatio)

	res := Calculate(standardPipe(), ptr(-1))
	assert.Equal(t, 0.0, res.FillRatio)
	assert.Equal(t, 0.0, res.VelocityMS)
}

func TestCalculate_ManningFormula(t *testing.T) {
	p := standardPipe()
	r := 0.15
	want := (1 / 0.013) * math.Pow(r/2, 2.0/3.0) * math.Sqrt(0.005)
	full := Full(p)
	assert.InDelta(t, want, full.VelocityMS, 1e-12)
	assert.InDelta(t, want*math.Pi*r*r, full.FlowRateM3S, 1e-12)
	assert.InDelta(t, r/2, full.HydraulicRadiusM, 1e-12)
}

func TestCalculate_SlopeIncreasesVelocity(t *testing.T) {
	gentle, steep := standardPipe(), standardPipe()
	gentle.Slope = 0.002
	steep.Slope = 0.02
	assert.Greater(t, Calculate(steep, nil).VelocityMS, Calculate(gentle, nil).VelocityMS)

	q := ptr(0.02)
	assert.Greater(t, Calculate(steep, q).VelocityMS, Calculate(gentle, q).VelocityMS)
}

func TestCalculate_DiameterIncreasesCapacity(t *testing.T) {
	small, large := standardPipe(), standardPipe()
	large.DiameterMM = 600
	assert.Greater(t, Calculate(large, nil).FlowRateM3S, Calculate(small, nil).FlowRateM3S)
	assert.Greater(t, Full(large).FlowRateM3S, Full(small).FlowRateM3S)
}

func TestCalculate_VelocityWarningsDoNotChangeStatus(t *testing.T) {
	slow := standardPipe()
	slow.Slope = 0.001
	full := Full(slow).FlowRateM3S
	res := Calculate(slow, ptr(0.3*full))
	assert.Equal(t, status.Normal, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.True(t, strings.Contains(res.Warnings[0], "deposition"))

	fast := standardPipe()
	fast.DiameterMM = 2000
	fast.Slope = 0.05
	full = Full(fast).FlowRateM3S
	res = Calculate(fast, ptr(0.5*full))
	assert.Equal(t, status.Normal, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "erosion")
}

// The factor is a documented approximation; these are its formula values, not hydraulic truth.
func TestPartialFlowFactor_Approximation(t *testing.T) {
	assert.Equal(t, 0.0, PartialFlowFactor(0))
	assert.Equal(t, 0.0, PartialFlowFactor(-0.2))
	assert.Equal(t, 1.0, PartialFlowFactor(1))
	assert.Equal(t, 1.0, PartialFlowFactor(1.2))
	assert.InDelta(t, math.Cbrt(0.5)*1.5, PartialFlowFactor(0.5), 1e-12)
	assert.InDelta(t, math.Cbrt(0.8)*1.2, PartialFlowFactor(0.8), 1e-12)
}

func TestHandler(t *testing.T) {
	body, _ := json.Marshal(Input{Pipe: standardPipe()})
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, status.Danger, res.Status)

	bad := standardPipe()
	bad.DiameterMM = 10
	body, _ = json.Marshal(Input{Pipe: bad})
	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipe.diameter_mm")
}
