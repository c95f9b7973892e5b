package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"StructFlow/internal/calc/premium/importer"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateStdin(t *testing.T) {
	out, err := run(t, `{"pipe": {"id": "CLI-1"}}`, "simulate", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "[CLI-1]")
	assert.Contains(t, out, "Overall status: DANGER")
}

func TestSimulateSummary(t *testing.T) {
	out, err := run(t, `{"pipe": {"id": "CLI-2"}}`, "simulate", "--format", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "pipe_id")
	assert.Contains(t, out, "CLI-2")
}

func TestSimulateInvalid(t *testing.T) {
	out, err := run(t, `{"pipe": {"diameter_mm": 1}}`, "simulate")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "INVALID: pipe.diameter_mm")
}

func TestSimulateFreeText(t *testing.T) {
	out, err := run(t, "Here:\n```json\n{\"pipe\": {\"id\": \"TXT\"}}\n```", "simulate", "--text")
	require.NoError(t, err)
	assert.Contains(t, out, `"pipe_id": "TXT"`)
}

func TestSimulateParseError(t *testing.T) {
	_, err := run(t, `{nope`, "simulate")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := run(t, `{}`, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, `"is_valid": true`)

	_, err = run(t, `{"pipe": {"material": "wood"}}`, "validate")
	assert.ErrorIs(t, err, errInvalid)
}

func TestMergeWithBase(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	out, err := run(t, `{"pipe": {"id": "BASE", "slope": 0.02}}`, "merge")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(base, []byte(out), 0o644))

	out, err = run(t, `{"load": {"soil_depth_m": 3}}`, "merge", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "BASE"`)
	assert.Contains(t, out, `"slope": 0.02`)
	assert.Contains(t, out, `"soil_depth_m": 3`)
	assert.Contains(t, out, `"is_validated": false`)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"pipe": {"id": "R"}}`), 0o644))
	pdf := filepath.Join(dir, "out.pdf")

	out, err := run(t, "", "report", "-f", doc, doc, "-o", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 pages)")
	_, err = os.Stat(pdf)
	assert.NoError(t, err)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := make([]any, len(importer.Columns))
	for i, c := range importer.Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"X-1", 300}))
	require.NoError(t, f.SaveAs(in))
	require.NoError(t, f.Close())

	outPath := filepath.Join(dir, "out.xlsx")
	out, err := run(t, "", "import", in, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows (DANGER=1)")
}
