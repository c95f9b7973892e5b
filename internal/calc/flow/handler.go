package flow

import (
	"encoding/json"
	"net/http"

	"StructFlow/internal/params"
	"StructFlow/internal/validate"
)

type Input struct {
	Pipe          params.PipeParameters `json:"pipe"`
	DesignFlowM3S *float64              `json:"design_flow_m3s,omitempty"`
}

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	errs := validate.Pipe(&input.Pipe)
	if input.DesignFlowM3S != nil && *input.DesignFlowM3S < 0 {
		errs = append(errs, "design_flow_m3s must not be negative.")
	}
	if len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(validate.Outcome{Valid: false, Errors: errs})
		return
	}
	json.NewEncoder(w).Encode(Calculate(input.Pipe, input.DesignFlowM3S))
}
