package logger

import (
	"context"
	"log/slog"
)

// Extra severities on top of slog's four built-in levels.
const (
	// LevelNotice sits between info and warn: normal but significant events.
	LevelNotice = slog.Level(2)
	// LevelCritical sits above error: conditions that need immediate attention.
	LevelCritical = slog.Level(12)
)

// LevelName returns the display name for a level, including the extra levels.
func LevelName(l slog.Level) string {
	switch l {
	case LevelNotice:
		return "NOTICE"
	case LevelCritical:
		return "CRITICAL"
	}
	return l.String()
}

// ReplaceLevelNames is a slog.HandlerOptions.ReplaceAttr func that prints
// LevelNotice and LevelCritical by name instead of "INFO+2" and "ERROR+4".
func ReplaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}

// Notice logs at LevelNotice.
func Notice(ctx context.Context, l *slog.Logger, msg string, attrs ...any) {
	l.Log(ctx, LevelNotice, msg, attrs...)
}

// Critical logs at LevelCritical.
func Critical(ctx context.Context, l *slog.Logger, msg string, attrs ...any) {
	l.Log(ctx, LevelCritical, msg, attrs...)
}
