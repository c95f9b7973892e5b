package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"StructFlow/internal/calc/premium/batch"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRowDocument(t *testing.T) {
	doc, err := RowDocument([]string{"P-1", "450", "", "pvc", "abc", "", "3", "", "", "", "stormwater", "0.1"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &got))
	assert.Equal(t, map[string]any{
		"pipe":            map[string]any{"id": "P-1", "diameter_mm": 450.0, "material": "pvc"},
		"load":            map[string]any{"soil_depth_m": 3.0},
		"environment":     map[string]any{"fluid": "stormwater"},
		"design_flow_m3s": 0.1,
	}, got)
}

func TestBlank(t *testing.T) {
	assert.True(t, blank([]string{"", "  "}))
	assert.False(t, blank([]string{"", "x"}))
}

func TestRowDocumentShortRow(t *testing.T) {
	doc, err := RowDocument([]string{"ONLY-ID"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pipe": {"id": "ONLY-ID"}}`, doc)
}

func TestReadRows(t *testing.T) {
	buf := workbook(t,
		[]any{"P-1", 600, 40, "concrete"},
		[]any{"P-2", 300},
	)
	docs, err := ReadRows(buf)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.JSONEq(t, `{"pipe": {"id": "P-1", "diameter_mm": 600, "length_m": 40, "material": "concrete"}}`, docs[0])
	assert.JSONEq(t, `{"pipe": {"id": "P-2", "diameter_mm": 300}}`, docs[1])
}

func TestReadRowsEmpty(t *testing.T) {
	_, err := ReadRows(workbook(t))
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, err = ReadRows(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	results := batch.NewRunner().Run(context.Background(), []string{`{"pipe": {"id": "W-1"}}`, `oops`}, 1)
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ResultColumns, rows[0])
	assert.Equal(t, "W-1", rows[1][0])
	assert.Equal(t, "DANGER", rows[1][1])
	assert.Equal(t, "ERROR", rows[2][1])
	assert.NotEmpty(t, rows[2][10])
}

func upload(t *testing.T, target string, content io.Reader) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "pipes.xlsx")
	require.NoError(t, err)
	_, err = io.Copy(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerWorkbook(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/import", workbook(t, []any{"H-1"})))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), "A2")
	require.NoError(t, err)
	assert.Equal(t, "H-1", v)
}

func TestHandlerJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/import?format=json", workbook(t, []any{"H-1"}, []any{"H-2"})))
	require.Equal(t, http.StatusOK, rec.Code)
	var out batch.Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Results, 2)
}

func TestHandlerMissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, httptest.NewRequest(http.MethodPost, "/import", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
