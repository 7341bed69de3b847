package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/example/courses-service/internal/config"
)

func TestNew(t *testing.T) {
	l, err := New(&config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}

	l, err = New(&config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at warn level")
	}

	if _, err := New(&config.LogConfig{Level: "loud"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
}
