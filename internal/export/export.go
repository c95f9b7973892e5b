// Package export renders simulation results for the outer surfaces: JSON for
// the API and storage, a flat summary map for dashboards and a plain text
// report for chat replies.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"StructFlow/internal/params"
	"StructFlow/internal/sim"
)

const (
	NotAvailable = "N/A"
	NoWarnings   = "none"
)

func MarshalResult(r sim.Result) ([]byte, error) {
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return json.MarshalIndent(r, "", "  ")
}

func UnmarshalResult(data []byte) (sim.Result, error) {
	var r sim.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return sim.Result{}, fmt.Errorf("decode simulation result: %w", err)
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return r, nil
}

func MarshalSchema(s params.DesignSchema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func UnmarshalSchema(data []byte) (params.DesignSchema, error) {
	var s params.DesignSchema
	if err := json.Unmarshal(data, &s); err != nil {
		return params.DesignSchema{}, fmt.Errorf("decode design schema: %w", err)
	}
	return s, nil
}

// SaveResult writes the JSON form of r to path, creating parent directories.
func SaveResult(path string, r sim.Result) error {
	data, err := MarshalResult(r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// SummaryMap flattens r into display strings keyed by field name.
func SummaryMap(r sim.Result) map[string]string {
	m := map[string]string{
		"pipe_id":       r.PipeID,
		"calculated_at": r.CalculatedAt,
		"status":        string(r.OverallStatus),
		"velocity_ms":   NotAvailable,
		"flow_rate_m3s": NotAvailable,
		"fill_ratio":    NotAvailable,
		"flow_status":   NotAvailable,
		"safety_factor": NotAvailable,
		"stress_status": NotAvailable,
		"summary":       r.Summary,
		"warnings":      NoWarnings,
	}
	if f := r.Flow; f != nil {
		m["velocity_ms"] = fmt.Sprintf("%.2f m/s", f.VelocityMS)
		m["flow_rate_m3s"] = fmt.Sprintf("%.4f m³/s", f.FlowRateM3S)
		m["fill_ratio"] = percent(f.FillRatio)
		m["flow_status"] = string(f.Status)
	}
	if s := r.Stress; s != nil {
		m["safety_factor"] = fmt.Sprintf("%.2f", s.SafetyFactor)
		m["stress_status"] = string(s.Status)
	}
	if len(r.Warnings) > 0 {
		m["warnings"] = strings.Join(r.Warnings, "; ")
	}
	return m
}

// Text is a short multi-line report of r.
func Text(r sim.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] simulation result at %s\n", r.PipeID, r.CalculatedAt)
	fmt.Fprintf(&b, "Overall status: %s\n", r.OverallStatus)
	if f := r.Flow; f != nil {
		fmt.Fprintf(&b, "Flow: %.4f m³/s | velocity: %.2f m/s | fill: %s [%s]\n",
			f.FlowRateM3S, f.VelocityMS, percent(f.FillRatio), f.Status)
	}
	if s := r.Stress; s != nil {
		fmt.Fprintf(&b, "Max stress: %.1f kPa | safety factor: %.2f [%s]\n",
			s.MaxStressKPa, s.SafetyFactor, s.Status)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %s\n", strings.Join(r.Warnings, ", "))
	}
	if r.ErrorReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", r.ErrorReason)
	}
	b.WriteString(r.Summary)
	return b.String()
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
