// Package importer reads pipe schedules from spreadsheets and writes simulation
// results back as a workbook.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"StructFlow/internal/calc/premium/batch"
)

// Columns is the expected layout of an input sheet; the first row is a header.
var Columns = []string{
	"id", "diameter_mm", "length_m", "material", "slope", "roughness_coefficient",
	"soil_depth_m", "traffic_load_kn", "internal_pressure_kpa", "flow_type", "fluid",
	"design_flow_m3s",
}

var ResultColumns = []string{
	"pipe_id", "overall_status", "velocity_ms", "flow_rate_m3s", "fill_ratio", "flow_status",
	"max_stress_kpa", "safety_factor", "stress_status", "warnings", "error",
}

var ErrEmptySheet = errors.New("sheet has no data rows")

type column struct {
	block   string // "" for top level
	key     string
	numeric bool
}

var layout = []column{
	{"pipe", "id", false},
	{"pipe", "diameter_mm", true},
	{"pipe", "length_m", true},
	{"pipe", "material", false},
	{"pipe", "slope", true},
	{"pipe", "roughness_coefficient", true},
	{"load", "soil_depth_m", true},
	{"load", "traffic_load_kn", true},
	{"load", "internal_pressure_kpa", true},
	{"environment", "flow_type", false},
	{"environment", "fluid", false},
	{"", "design_flow_m3s", true},
}

// ReadRows returns one overlay document per data row of the first sheet.
func ReadRows(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	docs := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		doc, err := RowDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrEmptySheet
	}
	return docs, nil
}

// RowDocument converts a row into an overlay document. Blank cells are left
// out so they are backfilled; numeric cells that do not parse are dropped.
func RowDocument(row []string) (string, error) {
	doc := map[string]any{}
	for i, col := range layout {
		if i >= len(row) {
			break
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		var value any = cell
		if col.numeric {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			value = v
		}
		if col.block == "" {
			doc[col.key] = value
			continue
		}
		block, ok := doc[col.block].(map[string]any)
		if !ok {
			block = map[string]any{}
			doc[col.block] = block
		}
		block[col.key] = value
	}
	data, err := json.Marshal(doc)
	return string(data), err
}

// WriteResults writes results as a single sheet workbook to w.
func WriteResults(w io.Writer, results []batch.ItemResult) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(ResultColumns))
	for i, c := range ResultColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, item := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := resultRow(item)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func resultRow(item batch.ItemResult) []any {
	res := item.Result
	row := []any{res.PipeID, string(res.OverallStatus), "", "", "", "", "", "", "", strings.Join(res.Warnings, "; "), ""}
	if fr := res.Flow; fr != nil {
		row[2], row[3], row[4], row[5] = fr.VelocityMS, fr.FlowRateM3S, fr.FillRatio, string(fr.Status)
	}
	if sr := res.Stress; sr != nil {
		row[6], row[7], row[8] = sr.MaxStressKPa, sr.SafetyFactor, string(sr.Status)
	}
	switch {
	case item.Error != "":
		row[10] = item.Error
	case res.ErrorReason != "":
		row[10] = res.ErrorReason
	}
	return row
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
