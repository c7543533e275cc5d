package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// Config holds tracer configuration.
type Config struct {
	Level      Level     // tracing level
	Format     Format    // output format
	Output     io.Writer // if nil, OutputPath is used
	OutputPath string    // file path, "-" or "" for stderr
	// Logger receives events in FormatLog; when nil a development logger
	// writing to stderr is built.
	Logger *zap.Logger
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}

	if cfg.Format == FormatLog {
		logger := cfg.Logger
		if logger == nil {
			zcfg := zap.NewDevelopmentConfig()
			if cfg.OutputPath != "" && cfg.OutputPath != "-" {
				zcfg.OutputPaths = []string{cfg.OutputPath}
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return nil, fmt.Errorf("failed to initialize trace logger: %w", err)
			}
		}
		return NewLogTracer(logger, cfg.Level), nil
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	return NewStreamTracer(w, cfg.Level, cfg.Format), nil
}

// openOutput opens the output writer from config.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }

// FormatFromPath guesses the format from an output path: ".ndjson" selects
// NDJSON, everything else text.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(path, ".ndjson") {
		return FormatNDJSON
	}
	return FormatText
}
