package output

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

var sample = Table{
	Headers: []string{"Company", "Country"},
	Rows: [][]string{
		{"Alfreds Futterkiste", "Germany"},
		{"Vaffeljernet", "Denmark"},
		{"Ernst Handel", "Austria"},
	},
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, " table ": FormatTable, "ndjson": FormatNDJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestPrintJSON_TableAsRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), sample); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if len(got) != 3 || got[1]["Country"] != "Denmark" {
		t.Errorf("records = %v", got)
	}
}

func TestPrintJSON_Query(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), `.[] | select(.Country == "Denmark") | .Company`)
	if err := NewPrinter(&buf, FormatJSON).Print(ctx, sample); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `"Vaffeljernet"` {
		t.Errorf("query output = %q", got)
	}
}

func TestPrintJSON_InvalidQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".[")
	if err := NewPrinter(&buf, FormatJSON).Print(ctx, []string{"a"}); err == nil {
		t.Fatal("Print() expected error for invalid query")
	}
}

func TestPrintNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatNDJSON).Print(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if got := buf.String(); got != "\"a\"\n\"b\"\n" {
		t.Errorf("ndjson = %q", got)
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatYAML).Print(context.Background(), map[string]int{"rows": 12}); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if !strings.Contains(buf.String(), "rows: 12") {
		t.Errorf("yaml = %q", buf.String())
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatTable).Print(context.Background(), sample); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "Company") || !strings.Contains(lines[0], "Country") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "Vaffeljernet") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestPrintText_Map(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]interface{}{"rows": 12, "columns": 3}
	if err := NewPrinter(&buf, FormatText).Print(context.Background(), data); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if got := buf.String(); got != "columns: 3\nrows: 12\n" {
		t.Errorf("text = %q", got)
	}
}

func TestApplyResultOptions(t *testing.T) {
	ctx := WithSort(WithLimit(context.Background(), 2), "country", false)

	got := ApplyResultOptions(ctx, sample).(Table)
	want := [][]string{{"Ernst Handel", "Austria"}, {"Vaffeljernet", "Denmark"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("rows = %q, want %q", got.Rows, want)
	}
	if sample.Rows[0][0] != "Alfreds Futterkiste" {
		t.Error("ApplyResultOptions() modified its input")
	}

	desc := WithSort(context.Background(), "value", true)
	values := ApplyResultOptions(desc, []string{"b", "c", "a"}).([]string)
	if !reflect.DeepEqual(values, []string{"c", "b", "a"}) {
		t.Errorf("values = %q", values)
	}

	records := sample.Records()
	passed := ApplyResultOptions(WithLimit(context.Background(), 1), records).([]map[string]string)
	if len(passed) != len(records) {
		t.Errorf("record list changed: %d records, want %d", len(passed), len(records))
	}

	if got := ApplyResultOptions(WithLimit(context.Background(), 1), 42); got != 42 {
		t.Errorf("scalar = %v", got)
	}
}
