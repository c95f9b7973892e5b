// Package history records authenticated simulations and serves them back.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"StructFlow/internal/auth"
	"StructFlow/internal/export"
	"StructFlow/internal/notify"
	"StructFlow/internal/params"
	"StructFlow/internal/repo"
	"StructFlow/internal/sim"
)

const MaxListLimit = 200

type Recorder struct {
	Repo      repo.Repository
	Publisher notify.Publisher
	Log       *zap.Logger
}

// Record stores the run and publishes it. A failed publish is logged only.
func (rc *Recorder) Record(ctx context.Context, userID string, schema params.DesignSchema, res sim.Result) (string, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	id, err := rc.Repo.SaveRun(ctx, repo.Run{
		UserID:        userID,
		PipeID:        res.PipeID,
		OverallStatus: string(res.OverallStatus),
		Schema:        string(schemaJSON),
		Result:        string(resultJSON),
	})
	if err != nil {
		return "", err
	}
	if rc.Publisher != nil {
		if err := rc.Publisher.Publish(ctx, notify.Event{RunID: id, UserID: userID, Result: res}); err != nil && rc.Log != nil {
			rc.Log.Warn("publish run", zap.String("run_id", id), zap.Error(err))
		}
	}
	return id, nil
}

type RunDetail struct {
	repo.Run
	Schema json.RawMessage `json:"schema"`
	Result json.RawMessage `json:"result"`
}

type Handler struct {
	Repo repo.Repository
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	limit := repo.DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > MaxListLimit {
			http.Error(w, "limit must be 1-200", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := h.Repo.ListRuns(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// Get answers with the stored schema and result; format=text gives the text report.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	run, err := h.Repo.GetRun(r.Context(), userID, mux.Vars(r)["id"])
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		res, err := export.UnmarshalResult([]byte(run.Result))
		if err != nil {
			http.Error(w, "Stored result is corrupt", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(export.Text(res)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RunDetail{Run: run, Schema: json.RawMessage(run.Schema), Result: json.RawMessage(run.Result)})
}
