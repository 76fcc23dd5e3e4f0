package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"declattr/internal/config"
	"declattr/internal/trace"
)

// setupTracing builds the tracer from the [trace] table, letting the
// --trace* flags override it, and attaches it to the command context.
// The returned cleanup flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (func(), error) {
	root := cmd.Root().PersistentFlags()
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"trace", &cfg.Output},
		{"trace-level", &cfg.Level},
		{"trace-format", &cfg.Format},
	} {
		if !root.Changed(f.name) {
			continue
		}
		v, err := root.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	// An explicit output with no level means the user wants to see phases.
	if root.Changed("trace") && !root.Changed("trace-level") && (cfg.Level == "" || cfg.Level == "off") {
		cfg.Level = "phase"
	}

	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	format, err := trace.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{Level: level, Format: format, OutputPath: cfg.Output})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
