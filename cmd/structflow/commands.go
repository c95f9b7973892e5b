package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StructFlow/internal/calc/premium/batch"
	"StructFlow/internal/calc/premium/importer"
	"StructFlow/internal/calc/report"
	"StructFlow/internal/export"
	"StructFlow/internal/intake"
	"StructFlow/internal/merge"
	"StructFlow/internal/params"
	"StructFlow/internal/sim"
	"StructFlow/internal/validate"
)

var errInvalid = errors.New("parameters failed validation")

type docFlags struct {
	file string
	base string
	text bool
}

func (f *docFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "-", "Parameter document (- for stdin)")
	cmd.Flags().StringVar(&f.base, "base", "", "Base design schema to merge onto")
	cmd.Flags().BoolVar(&f.text, "text", false, "Treat input as free text and extract the JSON document from it")
}

func read(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func (f *docFlags) baseSchema(cmd *cobra.Command) (*params.DesignSchema, error) {
	if f.base == "" {
		return nil, nil
	}
	data, err := read(cmd, f.base)
	if err != nil {
		return nil, err
	}
	s, err := export.UnmarshalSchema(data)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// load reads, merges and validates the document named by the flags.
func (f *docFlags) load(cmd *cobra.Command) (params.DesignSchema, validate.Outcome, error) {
	base, err := f.baseSchema(cmd)
	if err != nil {
		return params.DesignSchema{}, validate.Outcome{}, fmt.Errorf("base schema: %w", err)
	}
	data, err := read(cmd, f.file)
	if err != nil {
		return params.DesignSchema{}, validate.Outcome{}, err
	}
	if f.text {
		return intake.Parse(string(data), base)
	}
	return intake.FromDocument(string(data), base)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) simulateCmd() *cobra.Command {
	var (
		flags  docFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Merge, validate and simulate a parameter document",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			schema, outcome, err := flags.load(cmd)
			var vf *intake.ValidationFailure
			if errors.As(err, &vf) {
				fmt.Fprintln(out, outcome.String())
				return errInvalid
			}
			if err != nil {
				return err
			}
			res := sim.New().Run(&schema)
			a.logger.Debug("simulated", zap.String("pipe_id", res.PipeID), zap.String("status", string(res.OverallStatus)))

			switch format {
			case "json":
				data, err := export.MarshalResult(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "text":
				fmt.Fprintln(out, export.Text(res))
			case "summary":
				m := export.SummaryMap(res)
				keys := make([]string, 0, len(m))
				for k := range m {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "%-14s %s\n", k, m[k])
				}
			default:
				return fmt.Errorf("unknown format %q (json, text, summary)", format)
			}
			if res.IsError() {
				return errors.New(res.ErrorReason)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, text or summary")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var flags docFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Merge a document onto defaults and list every violated constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, outcome, err := flags.load(cmd)
			var vf *intake.ValidationFailure
			if err != nil && !errors.As(err, &vf) {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), outcome); err != nil {
				return err
			}
			if !outcome.Valid {
				return errInvalid
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	var flags docFlags
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Print the backfilled schema without validating it",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := flags.baseSchema(cmd)
			if err != nil {
				return err
			}
			data, err := read(cmd, flags.file)
			if err != nil {
				return err
			}
			doc := string(data)
			if flags.text {
				if doc, err = intake.ExtractJSON(doc); err != nil {
					return err
				}
			}
			merged, err := merge.Merge(base, doc)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), merged)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var (
		files  []string
		output string
		meta   report.Meta
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a PDF report for one or more parameter documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			files = append(files, args...)
			if len(files) == 0 {
				return errors.New("no documents given")
			}
			docs := make([]string, len(files))
			for i, f := range files {
				data, err := read(cmd, f)
				if err != nil {
					return err
				}
				docs[i] = string(data)
			}
			items := batch.NewRunner().Run(cmd.Context(), docs, 0)
			results := make([]sim.Result, len(items))
			for i, it := range items {
				results[i] = it.Result
			}

			var buf bytes.Buffer
			if err := report.Render(&buf, meta, results, time.Now()); err != nil {
				return err
			}
			api.DisableConfigDir()
			pages, err := api.PageCount(bytes.NewReader(buf.Bytes()), nil)
			if err != nil {
				return fmt.Errorf("check rendered pdf: %w", err)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", output, pages)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Parameter documents")
	cmd.Flags().StringVarP(&output, "output", "o", "report.pdf", "Output PDF")
	cmd.Flags().StringVar(&meta.Title, "title", "", "Report title")
	cmd.Flags().StringVar(&meta.Project, "project", "", "Project name")
	cmd.Flags().StringVar(&meta.Author, "author", "", "Author")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		output string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "import <schedule.xlsx>",
		Short: "Simulate every row of a pipe schedule workbook",
		Long:  "Columns: " + strings.Join(importer.Columns, ", ") + ". The first row is a header.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			docs, err := importer.ReadRows(in)
			if err != nil {
				return err
			}
			results := batch.NewRunner().Run(cmd.Context(), docs, limit)
			a.logger.Debug("imported", zap.Int("rows", len(docs)))

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := importer.WriteResults(out, results); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			counts := batch.Counts(results)
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d rows (%s)\n", output, len(results), strings.Join(parts, " "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "results.xlsx", "Output workbook")
	cmd.Flags().IntVar(&limit, "limit", 0, "Concurrent simulations (0 = GOMAXPROCS)")
	return cmd
}
