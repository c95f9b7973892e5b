// Package report renders simulation results as a PDF document, one page per pipe.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"StructFlow/internal/export"
	"StructFlow/internal/sim"
	"StructFlow/internal/status"
)

var ErrNoResults = errors.New("nothing to report")

type Meta struct {
	Title   string `json:"title"`
	Project string `json:"project"`
	Author  string `json:"author"`
	Notes   string `json:"notes"`
}

var rows = []struct{ key, label string }{
	{"status", "Overall status"},
	{"velocity_ms", "Velocity"},
	{"flow_rate_m3s", "Flow rate"},
	{"fill_ratio", "Fill ratio"},
	{"flow_status", "Flow status"},
	{"safety_factor", "Safety factor"},
	{"stress_status", "Stress status"},
	{"calculated_at", "Calculated at"},
}

// Render writes a PDF with a cover block followed by one page per result.
func Render(w io.Writer, meta Meta, results []sim.Result, now time.Time) error {
	if len(results) == 0 {
		return ErrNoResults
	}
	if meta.Title == "" {
		meta.Title = "Drainage Pipe Design Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	for i, res := range results {
		pdf.AddPage()
		if i == 0 {
			cover(pdf, tr, meta, results, now)
		}
		page(pdf, tr, res)
	}
	return pdf.Output(w)
}

func cover(pdf *gofpdf.Fpdf, tr func(string) string, meta Meta, results []sim.Result, now time.Time) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", meta.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Pipes: %d (%s)", len(results), tally(results))))
	pdf.Ln(8)
	if meta.Notes != "" {
		pdf.MultiCell(0, 6, tr(meta.Notes), "", "L", false)
	}
	pdf.Ln(6)
}

func page(pdf *gofpdf.Fpdf, tr func(string) string, res sim.Result) {
	summary := export.SummaryMap(res)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr("Pipe "+res.PipeID))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(50, 7, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 7, tr(summary[row.key]), "1", 1, "L", false, 0, "")
	}
	if s := res.Stress; s != nil {
		pdf.CellFormat(50, 7, "Max stress", "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 7, fmt.Sprintf("%.1f kPa", s.MaxStressKPa), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(res.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, "Warnings")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		for _, w := range res.Warnings {
			pdf.MultiCell(0, 5, tr("- "+w), "", "L", false)
		}
		pdf.Ln(2)
	}
	if res.ErrorReason != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr("Error: "+res.ErrorReason), "", "L", false)
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(res.Summary), "", "L", false)
}

func tally(results []sim.Result) string {
	counts := map[status.Level]int{}
	for _, r := range results {
		counts[r.OverallStatus]++
	}
	levels := make([]string, 0, len(counts))
	for l := range counts {
		levels = append(levels, string(l))
	}
	sort.Slice(levels, func(i, j int) bool {
		return status.Severity(status.Level(levels[i])) > status.Severity(status.Level(levels[j]))
	})
	for i, l := range levels {
		levels[i] = fmt.Sprintf("%d %s", counts[status.Level(l)], l)
	}
	return strings.Join(levels, ", ")
}
