package stress

import (
	"encoding/json"
	"net/http"

	"StructFlow/internal/params"
	"StructFlow/internal/validate"
)

type Input struct {
	Pipe params.PipeParameters `json:"pipe"`
	Load params.LoadConditions `json:"load"`
}

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	errs := append(validate.Pipe(&input.Pipe), validate.Load(&input.Load)...)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(validate.Outcome{Valid: false, Errors: errs})
		return
	}
	json.NewEncoder(w).Encode(Calculate(input.Pipe, input.Load))
}
