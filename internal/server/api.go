package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"StructFlow/internal/auth"
	"StructFlow/internal/history"
	"StructFlow/internal/intake"
	"StructFlow/internal/merge"
	"StructFlow/internal/params"
	"StructFlow/internal/sim"
	"StructFlow/internal/validate"
)

const (
	ServiceName = "StructFlow Simulation API"
	Version     = "1.0.0"
	MaxBodySize = 1 << 20
)

type pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	log      *zap.Logger
	parser   *intake.Parser
	sim      sim.Simulator
	recorder *history.Recorder
	db       pinger
	now      func() time.Time
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return "", false
	}
	if strings.TrimSpace(string(body)) == "" {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return "", false
	}
	return string(body), true
}

func (a *handlers) health(w http.ResponseWriter, r *http.Request) {
	out := map[string]string{
		"status":    "healthy",
		"timestamp": a.now().UTC().Format(time.RFC3339),
	}
	if a.db != nil {
		out["database"] = "ok"
		if err := a.db.Ping(r.Context()); err != nil {
			out["database"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": ServiceName,
		"version": Version,
		"status":  "running",
		"endpoints": []string{
			"GET /api/health", "POST /api/validate", "POST /api/simulate", "POST /api/intake",
			"POST /api/login", "POST /api/register",
		},
	})
}

type validateResponse struct {
	validate.Outcome
	Schema params.DesignSchema `json:"schema"`
}

// validateDoc merges the body onto defaults and reports every violation.
func (a *handlers) validateDoc(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	schema, out, err := a.parser.FromDocument(body, nil)
	var vf *intake.ValidationFailure
	switch {
	case err == nil, errors.As(err, &vf):
		writeJSON(w, http.StatusOK, validateResponse{Outcome: out, Schema: schema})
	case errors.Is(err, merge.ErrParse):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"reason": schema.ExtractionFailReason})
	}
}

// respond turns the intake outcome into an HTTP answer, simulating valid schemas.
func (a *handlers) respond(w http.ResponseWriter, r *http.Request, schema params.DesignSchema, out validate.Outcome, err error) {
	var vf *intake.ValidationFailure
	switch {
	case errors.Is(err, merge.ErrParse):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, intake.ErrNoJSON):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, intake.ErrExtractionFailed):
		writeJSON(w, http.StatusUnprocessableEntity, sim.Error(schema.PipeID(), "parameter extraction failed: "+schema.ExtractionFailReason, a.now()))
		return
	case errors.As(err, &vf):
		writeJSON(w, http.StatusUnprocessableEntity, sim.Error(schema.PipeID(), "validation failed: "+strings.Join(out.Errors, ", "), a.now()))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := a.sim.Run(&schema)
	if userID, ok := auth.UserID(r.Context()); ok && a.recorder != nil {
		id, err := a.recorder.Record(r.Context(), userID, schema, res)
		if err != nil {
			a.log.Error("record run", zap.String("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not store run")
			return
		}
		w.Header().Set("X-Run-ID", id)
	}
	writeJSON(w, http.StatusOK, res)
}

// simulate accepts a parameter document (a design schema or a partial overlay).
func (a *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	schema, out, err := a.parser.FromDocument(body, nil)
	a.respond(w, r, schema, out, err)
}

// intake accepts free text holding a JSON document, such as a model answer.
func (a *handlers) intake(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	schema, out, err := a.parser.Parse(body, nil)
	a.respond(w, r, schema, out, err)
}
