// Package intake turns free text (typically a language model answer) into a
// merged, validated design schema.
package intake

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"StructFlow/internal/merge"
	"StructFlow/internal/params"
	"StructFlow/internal/validate"
)

var fenced = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON returns the first fenced JSON block in text, or else the span
// from the first '{' to the last '}'.
func ExtractJSON(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoJSON
	}
	if m := fenced.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// Reason returns the top-level "reason" string of doc, or "" when doc has none
// or cannot be decoded.
func Reason(doc string) string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &top); err != nil {
		return ""
	}
	raw, ok := top["reason"]
	if !ok {
		return ""
	}
	var reason string
	if err := json.Unmarshal(raw, &reason); err != nil {
		return ""
	}
	return strings.TrimSpace(reason)
}

type Parser struct {
	merger *merge.Merger
}

func NewParser(m *merge.Merger) *Parser {
	if m == nil {
		m = merge.New(nil)
	}
	return &Parser{merger: m}
}

var std = NewParser(nil)

func Parse(text string, base *params.DesignSchema) (params.DesignSchema, validate.Outcome, error) {
	return std.Parse(text, base)
}

func FromDocument(doc string, base *params.DesignSchema) (params.DesignSchema, validate.Outcome, error) {
	return std.FromDocument(doc, base)
}

// Parse extracts the JSON document from text and hands it to FromDocument.
func (p *Parser) Parse(text string, base *params.DesignSchema) (params.DesignSchema, validate.Outcome, error) {
	doc, err := ExtractJSON(text)
	if err != nil {
		return params.DesignSchema{}, validate.Outcome{Errors: []string{}}, err
	}
	return p.FromDocument(doc, base)
}

// FromDocument merges doc onto base and validates the result. A document
// carrying a reason yields a schema with only ExtractionFailReason set.
func (p *Parser) FromDocument(doc string, base *params.DesignSchema) (params.DesignSchema, validate.Outcome, error) {
	if reason := Reason(doc); reason != "" {
		return params.DesignSchema{ExtractionFailReason: reason},
			validate.Outcome{Errors: []string{}},
			fmt.Errorf("%w: %s", ErrExtractionFailed, reason)
	}

	merged, err := p.merger.Merge(base, doc)
	if err != nil {
		return params.DesignSchema{}, validate.Outcome{Errors: []string{}}, err
	}
	out := validate.Apply(&merged)
	if !out.Valid {
		return merged, out, &ValidationFailure{Outcome: out}
	}
	return merged, out, nil
}
