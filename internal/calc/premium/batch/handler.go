package batch

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Input struct {
	Items []json.RawMessage `json:"items"`
	Limit int               `json:"limit,omitempty"`
}

type Output struct {
	Results []ItemResult   `json:"results"`
	Counts  map[string]int `json:"counts"`
}

type Handler struct {
	Runner *Runner
}

func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Items) == 0 {
		http.Error(w, "no items", http.StatusBadRequest)
		return
	}
	if len(input.Items) > MaxItems {
		http.Error(w, fmt.Sprintf("too many items (max %d)", MaxItems), http.StatusBadRequest)
		return
	}
	docs := make([]string, len(input.Items))
	for i, item := range input.Items {
		docs[i] = string(item)
	}

	runner := h.Runner
	if runner == nil {
		runner = NewRunner()
	}
	results := runner.Run(r.Context(), docs, input.Limit)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Output{Results: results, Counts: Counts(results)})
}
