package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|table|yaml)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format, after applying result
// options and, for JSON formats, the jq query held in ctx.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	data = ApplyResultOptions(ctx, data)

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *Printer) newEncoder(indent bool) *json.Encoder {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc
}

// printJSON outputs data as pretty-printed JSON, or the results of the jq
// query one per line.
func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	if query := QueryFromContext(ctx); query != "" {
		return p.runQuery(query, data)
	}
	if t, ok := data.(Table); ok {
		data = t.Records()
	}
	return p.newEncoder(true).Encode(data)
}

// printNDJSON writes one JSON value per line: list elements, table records,
// or the results of the jq query.
func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	if query := QueryFromContext(ctx); query != "" {
		return p.runQuery(query, data)
	}

	enc := p.newEncoder(false)
	if t, ok := data.(Table); ok {
		for _, rec := range t.Records() {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(data)
}

// runQuery evaluates a jq expression against data. Data goes through a JSON
// round trip first because gojq only accepts plain maps, slices and scalars.
func (p *Printer) runQuery(query string, data interface{}) error {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	if t, ok := data.(Table); ok {
		data = t.Records()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	enc := p.newEncoder(false)
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(data interface{}) error {
	if t, ok := data.(Table); ok {
		data = t.Records()
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printText outputs data for people: tables as an aligned grid, maps as
// sorted key: value lines, lists one item per line.
func (p *Printer) printText(data interface{}) error {
	switch v := data.(type) {
	case Table:
		return p.printGrid(v.Headers, v.Rows)
	case string:
		_, err := fmt.Fprintln(p.w, v)
		return err
	case []string:
		for _, s := range v {
			if _, err := fmt.Fprintln(p.w, s); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		return p.printKeyValues(v)
	case map[string]interface{}:
		flat := make(map[string]string, len(v))
		for k, val := range v {
			flat[k] = fmt.Sprint(val)
		}
		return p.printKeyValues(flat)
	default:
		_, err := fmt.Fprintln(p.w, v)
		return err
	}
}

func (p *Printer) printKeyValues(m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(p.w, "%s: %s\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(data interface{}) error {
	switch v := data.(type) {
	case Table:
		return p.printGrid(v.Headers, v.Rows)
	case []string:
		rows := make([][]string, len(v))
		for i, s := range v {
			rows[i] = []string{s}
		}
		return p.printGrid([]string{"value"}, rows)
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, v[k]}
		}
		return p.printGrid([]string{"key", "value"}, rows)
	default:
		return p.printText(data)
	}
}

func (p *Printer) printGrid(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}
