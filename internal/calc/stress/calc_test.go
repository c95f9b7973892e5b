package stress

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructFlow/internal/params"
	"StructFlow/internal/status"
)

func pipe(d float64, m params.Material) params.PipeParameters {
	return params.PipeParameters{ID: "P", DiameterMM: d, LengthM: 50, Material: m, Slope: 0.005, RoughnessCoefficient: 0.013}
}

func TestCalculate_LargerDiameterHigherSafetyFactor(t *testing.T) {
	load := params.LoadConditions{SoilDepthM: 1.0, TrafficLoadKN: 10, InternalPressureKPa: 5}
	small := Calculate(pipe(200, params.MaterialConcrete), load)
	large := Calculate(pipe(1000, params.MaterialConcrete), load)
	assert.Greater(t, large.SafetyFactor, small.SafetyFactor)
	assert.Less(t, large.MaxStressKPa, small.MaxStressKPa)
}

func TestCalculate_MonotonicInLoad(t *testing.T) {
	p := pipe(600, params.MaterialDuctileIron)
	base := params.LoadConditions{SoilDepthM: 1, TrafficLoadKN: 20, InternalPressureKPa: 5}

	moreTraffic := base
	moreTraffic.TrafficLoadKN = 120
	deeper := base
	deeper.SoilDepthM = 6

	b := Calculate(p, base)
	for name, l := range map[string]params.LoadConditions{"traffic": moreTraffic, "soil": deeper} {
		r := Calculate(p, l)
		assert.Greater(t, r.MaxStressKPa, b.MaxStressKPa, name)
		assert.Less(t, r.SafetyFactor, b.SafetyFactor, name)
		assert.Greater(t, HoopStressKPa(p, l), HoopStressKPa(p, base), name)
	}
}

func TestHoopStress_Formula(t *testing.T) {
	// With t = 0.1 D the ring stress is five times the total pressure.
	p := pipe(1000, params.MaterialSteel)
	l := params.LoadConditions{SoilDepthM: 1, TrafficLoadKN: 0, InternalPressureKPa: 0}
	assert.InDelta(t, 5*28.5, HoopStressKPa(p, l), 1e-9)

	res := Calculate(p, l)
	assert.InDelta(t, 142.5, res.MaxStressKPa, 1e-9)
	assert.InDelta(t, 1200/142.5, res.SafetyFactor, 5e-4)
	assert.Equal(t, status.Safe, res.Status)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, status.Safe, classify(2.0))
	assert.Equal(t, status.Safe, classify(7))
	assert.Equal(t, status.Warning, classify(1.99))
	assert.Equal(t, status.Warning, classify(1.5))
	assert.Equal(t, status.Danger, classify(1.49))
	assert.Equal(t, status.Danger, classify(0.1))
}

func TestAllowableStress(t *testing.T) {
	assert.Equal(t, 400.0, AllowableStressKPa("concrete"))
	assert.Equal(t, 1500.0, AllowableStressKPa("Ductile_Iron"))
	assert.Equal(t, 200.0, AllowableStressKPa("pvc"))
	assert.Equal(t, 1200.0, AllowableStressKPa("STEEL"))
	assert.Equal(t, 180.0, AllowableStressKPa("hdpe"))
	assert.Equal(t, 400.0, AllowableStressKPa("wood"))
	assert.Equal(t, 400.0, AllowableStressKPa(""))
}

func TestCalculate_DefaultConditionsAreDangerous(t *testing.T) {
	res := Calculate(pipe(300, params.MaterialConcrete), params.LoadConditions{SoilDepthM: 2, TrafficLoadKN: 50, InternalPressureKPa: 10})
	assert.Equal(t, status.Danger, res.Status)
	assert.Less(t, res.SafetyFactor, SafetyFactorWarning)
}

func TestHandler(t *testing.T) {
	body, _ := json.Marshal(Input{Pipe: pipe(1000, params.MaterialSteel), Load: params.LoadConditions{SoilDepthM: 1}})
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, status.Safe, res.Status)

	body, _ = json.Marshal(Input{Pipe: pipe(1000, params.MaterialSteel), Load: params.LoadConditions{SoilDepthM: 99}})
	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "load.soil_depth_m")
}

func TestCalculate_UnloadedPipeIsCapped(t *testing.T) {
	pipe := params.PipeParameters{ID: "P", DiameterMM: 300, LengthM: 10, Material: params.MaterialPVC, Slope: 0.01, RoughnessCoefficient: 0.011}
	res := Calculate(pipe, params.LoadConditions{})
	assert.Equal(t, 0.0, res.MaxStressKPa)
	assert.Equal(t, MaxSafetyFactor, res.SafetyFactor)
	assert.Equal(t, status.Safe, res.Status)
}
