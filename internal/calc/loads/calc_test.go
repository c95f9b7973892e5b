package loads

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructFlow/internal/params"
)

func TestBreakdown_Defaults(t *testing.T) {
	res := Breakdown(
		params.PipeParameters{DiameterMM: 300},
		params.LoadConditions{SoilDepthM: 2, TrafficLoadKN: 50, InternalPressureKPa: 10},
	)
	assert.InDelta(t, 57.0, res.EarthPressureKPa, 1e-9)
	assert.InDelta(t, 50/(math.Pi*0.15*0.15), res.TrafficPressureKPa, 1e-9)
	assert.Equal(t, 10.0, res.InternalPressureKPa)
	assert.InDelta(t, res.EarthPressureKPa+res.TrafficPressureKPa+10, res.TotalKPa, 1e-9)
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	_, err := Calculate(Input{DiameterMM: 0})
	assert.Error(t, err)
	_, err = Calculate(Input{DiameterMM: 300, SoilDepthM: -1})
	assert.Error(t, err)

	res, err := Calculate(Input{DiameterMM: 1000, SoilDepthM: 1})
	require.NoError(t, err)
	assert.InDelta(t, 28.5, res.TotalKPa, 1e-9)
	assert.NotEmpty(t, res.Notes)
}

func TestHandler(t *testing.T) {
	body, _ := json.Marshal(Input{DiameterMM: 300, SoilDepthM: 2, TrafficLoadKN: 50, InternalPressureKPa: 10})
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.InDelta(t, 57.0, res.EarthPressureKPa, 1e-9)

	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
