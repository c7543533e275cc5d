package trace

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogTracer forwards events to a zap logger. Span ends are logged at info
// level, everything else at debug.
type LogTracer struct {
	logger *zap.Logger
	level  Level
}

// NewLogTracer wraps logger. A nil logger discards events.
func NewLogTracer(logger *zap.Logger, level Level) *LogTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTracer{logger: logger, level: level}
}

// Emit logs ev with its fields.
func (t *LogTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	lvl := zapcore.DebugLevel
	if ev.Kind == KindSpanEnd {
		lvl = zapcore.InfoLevel
	}
	ce := t.logger.Check(lvl, ev.Name)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("span", ev.SpanID),
	)
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, ev.Extra[k]))
	}
	ce.Write(fields...)
}

// Flush syncs the logger.
func (t *LogTracer) Flush() error {
	// stderr-backed loggers report EINVAL/ENOTTY on Sync; that is not a trace failure
	_ = t.logger.Sync() //nolint:errcheck
	return nil
}

// Close flushes the logger.
func (t *LogTracer) Close() error {
	return t.Flush()
}

// Level returns the current tracing level.
func (t *LogTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *LogTracer) Enabled() bool {
	return t.level > LevelOff
}
