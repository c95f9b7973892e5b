package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"StructFlow/internal/calc/premium/batch"
	"StructFlow/internal/sim"
)

type Input struct {
	Meta
	Documents []json.RawMessage `json:"documents"`
}

type Handler struct {
	Runner *batch.Runner
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Documents) == 0 || len(input.Documents) > batch.MaxItems {
		http.Error(w, "documents must hold 1 to 500 pipes", http.StatusBadRequest)
		return
	}

	runner := h.Runner
	if runner == nil {
		runner = batch.NewRunner()
	}
	docs := make([]string, len(input.Documents))
	for i, d := range input.Documents {
		docs[i] = string(d)
	}
	items := runner.Run(r.Context(), docs, 0)
	results := make([]sim.Result, len(items))
	for i, item := range items {
		results[i] = item.Result
	}

	var buf bytes.Buffer
	if err := Render(&buf, input.Meta, results, time.Now()); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
