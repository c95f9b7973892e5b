package importer

import (
	"encoding/json"
	"net/http"

	"StructFlow/internal/calc/premium/batch"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Runner *batch.Runner
}

// Import accepts a multipart "file" upload and answers with a results workbook,
// or JSON when format=json is given.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	docs, err := ReadRows(file)
	if err != nil {
		http.Error(w, "Invalid file: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(docs) > batch.MaxItems {
		http.Error(w, "Too many rows", http.StatusBadRequest)
		return
	}

	runner := h.Runner
	if runner == nil {
		runner = batch.NewRunner()
	}
	results := runner.Run(r.Context(), docs, 0)

	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(batch.Output{Results: results, Counts: batch.Counts(results)})
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="structflow-results.xlsx"`)
	if err := WriteResults(w, results); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
	}
}
