// Package merge overlays a partial parameter document onto a base design schema.
//
// The overlay is first decoded into raw key/value maps, so a key that is absent
// from the document never touches the base value, whatever that value is.
// Present keys overwrite only when their value has the right JSON type; wrong
// types, nulls and negative design flows are ignored. Fields still at zero
// afterwards receive the conservative defaults from package params.
package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"StructFlow/internal/params"
)

type Merger struct {
	now func() time.Time
}

// New returns a Merger using now for generated identifiers and timestamps.
func New(now func() time.Time) *Merger {
	if now == nil {
		now = time.Now
	}
	return &Merger{now: now}
}

var std = New(time.Now)

// Merge overlays overlay onto a deep copy of base (or an empty schema when base is nil).
func Merge(base *params.DesignSchema, overlay string) (params.DesignSchema, error) {
	return std.Merge(base, overlay)
}

func (m *Merger) Merge(base *params.DesignSchema, overlay string) (params.DesignSchema, error) {
	var doc fields
	if err := json.Unmarshal([]byte(overlay), &doc); err != nil {
		return params.DesignSchema{}, &ParseError{Err: err}
	}
	if doc == nil {
		return params.DesignSchema{}, &ParseError{Err: errors.New("document is null")}
	}

	var merged params.DesignSchema
	if base != nil {
		merged = base.Clone()
	}

	applyTop(&merged, doc)
	if f, ok := doc.object("pipe"); ok {
		if merged.Pipe == nil {
			merged.Pipe = &params.PipeParameters{}
		}
		applyPipe(merged.Pipe, f)
	}
	if f, ok := doc.object("load"); ok {
		if merged.Load == nil {
			merged.Load = &params.LoadConditions{}
		}
		applyLoad(merged.Load, f)
	}
	if f, ok := doc.object("environment"); ok {
		if merged.Environment == nil {
			merged.Environment = &params.EnvironmentConditions{}
		}
		applyEnvironment(merged.Environment, f)
	}

	backfill(&merged, m.now())
	merged.IsValidated = false
	return merged, nil
}

type fields map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) object(key string) (fields, bool) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	var out fields
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func number(f fields, key string, dst *float64) bool {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

// text ignores blank strings so an empty answer never replaces a known value.
func text[T ~string](f fields, key string, dst *T) bool {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	if strings.TrimSpace(v) == "" {
		return false
	}
	*dst = T(v)
	return true
}

func applyTop(s *params.DesignSchema, doc fields) {
	text(doc, "schema_version", &s.SchemaVersion)
	text(doc, "created_at", &s.CreatedAt)

	// A negative flow is as unusable as a wrong type.
	var q float64
	if number(doc, "design_flow_m3s", &q) && q >= 0 {
		s.DesignFlowM3S = &q
	}

	// Extraction producers explain omissions with a document level "reason".
	if !text(doc, "llm_parse_fail_reason", &s.ExtractionFailReason) {
		text(doc, "reason", &s.ExtractionFailReason)
	}
}

func applyPipe(p *params.PipeParameters, f fields) {
	text(f, "id", &p.ID)
	number(f, "diameter_mm", &p.DiameterMM)
	number(f, "length_m", &p.LengthM)
	text(f, "material", &p.Material)
	number(f, "slope", &p.Slope)
	number(f, "roughness_coefficient", &p.RoughnessCoefficient)
}

func applyLoad(l *params.LoadConditions, f fields) {
	number(f, "soil_depth_m", &l.SoilDepthM)
	number(f, "traffic_load_kn", &l.TrafficLoadKN)
	number(f, "internal_pressure_kpa", &l.InternalPressureKPa)
}

func applyEnvironment(e *params.EnvironmentConditions, f fields) {
	text(f, "flow_type", &e.FlowType)
	text(f, "fluid", &e.Fluid)
}
