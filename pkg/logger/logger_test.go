package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitLevels(t *testing.T) {
	levels := []struct {
		name    string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range levels {
		Init(&Config{Level: tt.name, Format: "text"})
		if !slog.Default().Enabled(context.Background(), tt.enabled) {
			t.Errorf("Level %s: expected %v to be enabled", tt.name, tt.enabled)
		}
	}

	// Unknown level falls back to info
	Init(&Config{Level: "bogus", Format: "text"})
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug disabled for unknown level")
	}
}

func TestInitJSONFormat(t *testing.T) {
	Init(&Config{Level: "info", Format: "json"})
	if slog.Default() == nil {
		t.Fatal("Expected a default logger")
	}
}

func TestWithContext(t *testing.T) {
	Init(&Config{Level: "info", Format: "text"})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	ctx = context.WithValue(ctx, UsernameKey, "psilva")
	ctx = context.WithValue(ctx, RoleKey, "submitter")
	ctx = context.WithValue(ctx, EntityKey, "Brazil")

	logger := WithContext(ctx)
	if logger == nil {
		t.Fatal("Expected a logger")
	}

	// Empty context returns the default logger unchanged
	if WithContext(context.Background()) == nil {
		t.Fatal("Expected a logger for empty context")
	}

	// Helpers must not panic with or without context values
	Info(ctx, "info message", "key", "value")
	Debug(ctx, "debug message")
	Warn(context.Background(), "warn message")
	Error(context.Background(), "error message")
}
