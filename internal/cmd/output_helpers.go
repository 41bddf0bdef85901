package cmd

import (
	"context"
	"fmt"

	"github.com/salmonumbrella/tablecheck/internal/output"
)

func structuredOutputRequested(ctx context.Context) bool {
	return output.IsStructured(output.FormatFromContext(ctx))
}

// printResult writes data to stdout in the format held by ctx.
func printResult(ctx context.Context, data interface{}) error {
	printer := output.NewPrinter(stdoutFromContext(ctx), output.FormatFromContext(ctx))
	return printer.Print(ctx, data)
}

// printScalar prints structured for json/ndjson/yaml and the plain text line
// otherwise.
func printScalar(ctx context.Context, structured interface{}, text string) error {
	if structuredOutputRequested(ctx) {
		return printResult(ctx, structured)
	}
	_, err := fmt.Fprintln(stdoutFromContext(ctx), text)
	return err
}
