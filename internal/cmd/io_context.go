package cmd

import (
	"context"
	"io"
	"os"
)

type ioKey struct{}

// ioState holds the command's streams; nil fields fall back to the process
// streams.
type ioState struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, ioState{in: in, out: out, err: err})
}

func ioFromContext(ctx context.Context) ioState {
	var s ioState
	if ctx != nil {
		s, _ = ctx.Value(ioKey{}).(ioState)
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.err == nil {
		s.err = os.Stderr
	}
	return s
}

func stdinFromContext(ctx context.Context) io.Reader  { return ioFromContext(ctx).in }
func stdoutFromContext(ctx context.Context) io.Writer { return ioFromContext(ctx).out }
func stderrFromContext(ctx context.Context) io.Writer { return ioFromContext(ctx).err }
