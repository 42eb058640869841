package ports

import (
	"context"
	"testing"
)

func TestNopLogger_ImplementsInterface(_ *testing.T) {
	var _ Logger = NewNopLogger()
}

func TestNopLogger_Methods(t *testing.T) {
	logger := NewNopLogger()
	ctx := context.Background()

	// All methods should be no-ops
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	// With should return itself
	withLogger := logger.With(F("key", "value"))
	if withLogger != logger {
		t.Error("NopLogger.With should return itself")
	}
}

func TestNopLogger_Level(t *testing.T) {
	logger := NewNopLogger()

	if logger.Level() != LevelInfo {
		t.Errorf("default level = %v, want %v", logger.Level(), LevelInfo)
	}

	logger.SetLevel(LevelDebug)
	if logger.Level() != LevelDebug {
		t.Errorf("after SetLevel, level = %v, want %v", logger.Level(), LevelDebug)
	}
}
