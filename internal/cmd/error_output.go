package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/tablecheck/internal/output"
	"github.com/salmonumbrella/tablecheck/internal/secrets"
	"github.com/salmonumbrella/tablecheck/internal/source"
	"github.com/salmonumbrella/tablecheck/internal/tableview"
)

type errorFormatKey struct{}

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		if ctx == nil {
			return "text"
		}
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

// buildErrorEnvelope classifies err. Column errors are checked before
// not-found errors because a CellNotFoundError may wrap one.
func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":  err.Error(),
		"type":     "error",
		"category": "system",
	}
	payload := map[string]interface{}{"error": errMap}

	var (
		structureErr tableview.StructureError
		ambiguousErr tableview.AmbiguousColumnError
		columnErr    tableview.ColumnNotFoundError
		authErr      source.AuthenticationError
		docErr       source.NotFoundError
		fetchErr     source.FetchError
	)
	switch {
	case errors.As(err, &structureErr):
		errMap["type"] = "structure"
		errMap["category"] = "user"
		errMap["part"] = structureErr.Part
	case errors.As(err, &ambiguousErr):
		errMap["type"] = "ambiguous_column"
		errMap["category"] = "user"
		errMap["column"] = ambiguousErr.Column
		errMap["positions"] = ambiguousErr.Positions
	case errors.As(err, &columnErr):
		errMap["type"] = "column_not_found"
		errMap["category"] = "user"
		errMap["column"] = columnErr.Column
	case tableview.IsNotFound(err), errors.Is(err, tableview.ErrNoSuchElement), errors.Is(err, secrets.ErrNotFound):
		errMap["type"] = "not_found"
		errMap["category"] = "user"
	case errors.As(err, &authErr):
		errMap["type"] = "auth"
		errMap["category"] = "user"
	case errors.As(err, &docErr):
		errMap["type"] = "not_found"
		errMap["category"] = "user"
	case errors.As(err, &fetchErr):
		errMap["type"] = "fetch"
		errMap["status"] = fetchErr.StatusCode
	}

	return payload
}
