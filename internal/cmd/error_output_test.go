package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/tablecheck/internal/output"
	"github.com/salmonumbrella/tablecheck/internal/secrets"
	"github.com/salmonumbrella/tablecheck/internal/source"
	"github.com/salmonumbrella/tablecheck/internal/tableview"
)

func TestValidateErrorFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"auto", false},
		{"text", false},
		{"json", false},
		{"yaml", false},
		{"AUTO", false},   // case insensitive
		{"TEXT", false},   // case insensitive
		{" json ", false}, // whitespace trimmed
		{"invalid", true},
		{"xml", true},
		{"ndjson", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := validateErrorFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateErrorFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveErrorFormat(t *testing.T) {
	tests := []struct {
		name         string
		errorFormat  string
		outputFormat output.Format
		want         string
	}{
		{
			name:         "empty defaults to text",
			errorFormat:  "",
			outputFormat: output.FormatText,
			want:         "text",
		},
		{
			name:         "auto with json output",
			errorFormat:  "auto",
			outputFormat: output.FormatJSON,
			want:         "json",
		},
		{
			name:         "auto with ndjson output",
			errorFormat:  "auto",
			outputFormat: output.FormatNDJSON,
			want:         "json",
		},
		{
			name:         "auto with yaml output",
			errorFormat:  "auto",
			outputFormat: output.FormatYAML,
			want:         "yaml",
		},
		{
			name:         "auto with text output",
			errorFormat:  "auto",
			outputFormat: output.FormatText,
			want:         "text",
		},
		{
			name:         "explicit json overrides",
			errorFormat:  "json",
			outputFormat: output.FormatText,
			want:         "json",
		},
		{
			name:         "explicit yaml overrides",
			errorFormat:  "yaml",
			outputFormat: output.FormatText,
			want:         "yaml",
		},
		{
			name:         "explicit text overrides",
			errorFormat:  "text",
			outputFormat: output.FormatJSON,
			want:         "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctx = WithErrorFormat(ctx, tt.errorFormat)
			ctx = output.WithFormat(ctx, tt.outputFormat)

			got := effectiveErrorFormat(ctx)
			if got != tt.want {
				t.Errorf("effectiveErrorFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildErrorEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantType     string
		wantCategory string
	}{
		{
			name:         "generic error",
			err:          errors.New("something went wrong"),
			wantType:     "error",
			wantCategory: "system",
		},
		{
			name:         "structure error",
			err:          errors.Join(tableview.StructureError{Part: "body"}, tableview.StructureError{Part: "headers"}),
			wantType:     "structure",
			wantCategory: "user",
		},
		{
			name:         "column not found",
			err:          tableview.ColumnNotFoundError{Column: "Phone"},
			wantType:     "column_not_found",
			wantCategory: "user",
		},
		{
			name:         "ambiguous column",
			err:          tableview.AmbiguousColumnError{Column: "Name", Positions: []int{1, 2}},
			wantType:     "ambiguous_column",
			wantCategory: "user",
		},
		{
			name:         "cell error wrapping column error",
			err:          tableview.CellNotFoundError{Column: "Phone", Value: "x", Err: tableview.ColumnNotFoundError{Column: "Phone"}},
			wantType:     "column_not_found",
			wantCategory: "user",
		},
		{
			name:         "row not found",
			err:          fmt.Errorf("checking: %w", tableview.RowNotFoundError{Column: "Country", Value: "Brazil"}),
			wantType:     "not_found",
			wantCategory: "user",
		},
		{
			name:         "missing table",
			err:          fmt.Errorf("locating table %q: %w", "#nope", tableview.ErrNoSuchElement),
			wantType:     "not_found",
			wantCategory: "user",
		},
		{
			name:         "auth error",
			err:          source.AuthenticationError{Message: "invalid token"},
			wantType:     "auth",
			wantCategory: "user",
		},
		{
			name:         "document not found",
			err:          source.NotFoundError{Message: "no such document"},
			wantType:     "not_found",
			wantCategory: "user",
		},
		{
			name:         "fetch error",
			err:          source.FetchError{StatusCode: 502, URL: "https://example.com"},
			wantType:     "fetch",
			wantCategory: "system",
		},
		{
			name:         "missing stored token",
			err:          fmt.Errorf("no token stored for example.com: %w", secrets.ErrNotFound),
			wantType:     "not_found",
			wantCategory: "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := buildErrorEnvelope(tt.err)

			errMap, ok := result["error"].(map[string]interface{})
			if !ok {
				t.Fatal("expected 'error' map in result")
			}

			if errMap["message"] != tt.err.Error() {
				t.Errorf("message = %v, want %v", errMap["message"], tt.err.Error())
			}
			if errMap["type"] != tt.wantType {
				t.Errorf("type = %v, want %v", errMap["type"], tt.wantType)
			}
			if errMap["category"] != tt.wantCategory {
				t.Errorf("category = %v, want %v", errMap["category"], tt.wantCategory)
			}
		})
	}
}

func TestBuildErrorEnvelope_Details(t *testing.T) {
	result := buildErrorEnvelope(tableview.AmbiguousColumnError{Column: "Name", Positions: []int{1, 3}})
	errMap := result["error"].(map[string]interface{})
	if errMap["column"] != "Name" {
		t.Errorf("column = %v", errMap["column"])
	}
	if positions, ok := errMap["positions"].([]int); !ok || len(positions) != 2 || positions[1] != 3 {
		t.Errorf("positions = %v", errMap["positions"])
	}

	result = buildErrorEnvelope(source.FetchError{StatusCode: 503, URL: "https://example.com"})
	if status := result["error"].(map[string]interface{})["status"]; status != 503 {
		t.Errorf("status = %v, want 503", status)
	}
}

func TestPrintCommandError_Nil(t *testing.T) {
	errBuf := &bytes.Buffer{}
	ctx := withIO(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, errBuf)

	printCommandError(ctx, nil)

	if errBuf.Len() != 0 {
		t.Errorf("expected no output for nil error, got %q", errBuf.String())
	}
}

func TestPrintCommandError_Text(t *testing.T) {
	errBuf := &bytes.Buffer{}
	ctx := context.Background()
	ctx = withIO(ctx, &bytes.Buffer{}, &bytes.Buffer{}, errBuf)
	ctx = WithErrorFormat(ctx, "text")
	ctx = output.WithFormat(ctx, output.FormatText)

	testErr := errors.New("test error message")
	printCommandError(ctx, testErr)

	got := strings.TrimSpace(errBuf.String())
	if got != "test error message" {
		t.Errorf("expected %q, got %q", "test error message", got)
	}
}

func TestPrintCommandError_JSON(t *testing.T) {
	errBuf := &bytes.Buffer{}
	ctx := context.Background()
	ctx = withIO(ctx, &bytes.Buffer{}, &bytes.Buffer{}, errBuf)
	ctx = WithErrorFormat(ctx, "json")
	ctx = output.WithFormat(ctx, output.FormatText)

	testErr := source.AuthenticationError{Message: "auth failed"}
	printCommandError(ctx, testErr)

	var result map[string]interface{}
	if err := json.Unmarshal(errBuf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	errMap, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'error' map in output")
	}

	if errMap["message"] != "auth failed" {
		t.Errorf("message = %v, want 'auth failed'", errMap["message"])
	}
	if errMap["type"] != "auth" {
		t.Errorf("type = %v, want 'auth'", errMap["type"])
	}
}

func TestPrintCommandError_YAML(t *testing.T) {
	errBuf := &bytes.Buffer{}
	ctx := context.Background()
	ctx = withIO(ctx, &bytes.Buffer{}, &bytes.Buffer{}, errBuf)
	ctx = WithErrorFormat(ctx, "yaml")
	ctx = output.WithFormat(ctx, output.FormatText)

	testErr := tableview.ColumnNotFoundError{Column: "Phone"}
	printCommandError(ctx, testErr)

	var result map[string]interface{}
	if err := yaml.Unmarshal(errBuf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse YAML output: %v", err)
	}

	errMap, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'error' map in output")
	}

	if errMap["message"] != `column "Phone" not found` {
		t.Errorf("message = %v", errMap["message"])
	}
	if errMap["type"] != "column_not_found" {
		t.Errorf("type = %v, want 'column_not_found'", errMap["type"])
	}
}
