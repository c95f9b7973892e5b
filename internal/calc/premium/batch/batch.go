// Package batch simulates many design documents concurrently.
package batch

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"StructFlow/internal/intake"
	"StructFlow/internal/sim"
)

const MaxItems = 500

type ItemResult struct {
	Index  int        `json:"index"`
	Result sim.Result `json:"result"`
	Error  string     `json:"error,omitempty"`
}

type Runner struct {
	Parser    *intake.Parser
	Simulator sim.Simulator
	Now       func() time.Time
}

func NewRunner() *Runner {
	return &Runner{Parser: intake.NewParser(nil), Simulator: sim.New(), Now: time.Now}
}

// Run evaluates every item with at most limit in flight (GOMAXPROCS when
// limit <= 0). Results keep the input order. Once ctx is done no further items
// are scheduled; those get ERROR results carrying the context error.
func (r *Runner) Run(ctx context.Context, items []string, limit int) []ItemResult {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]ItemResult, len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			out[i] = ItemResult{Index: i, Result: sim.Error("UNKNOWN", err.Error(), r.Now()), Error: err.Error()}
			continue
		}
		g.Go(func() error {
			out[i] = r.one(i, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) one(i int, doc string) ItemResult {
	schema, out, err := r.Parser.FromDocument(doc, nil)
	var vf *intake.ValidationFailure
	switch {
	case errors.As(err, &vf):
		reason := "validation failed: " + strings.Join(out.Errors, "; ")
		return ItemResult{Index: i, Result: sim.Error(schema.PipeID(), reason, r.Now())}
	case err != nil:
		return ItemResult{Index: i, Result: sim.Error(schema.PipeID(), err.Error(), r.Now()), Error: err.Error()}
	}
	return ItemResult{Index: i, Result: r.Simulator.Run(&schema)}
}

// Counts tallies results by overall status.
func Counts(results []ItemResult) map[string]int {
	counts := make(map[string]int)
	for _, res := range results {
		counts[string(res.Result.OverallStatus)]++
	}
	return counts
}
