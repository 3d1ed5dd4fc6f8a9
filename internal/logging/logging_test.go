package logging

import (
	"strings"
	"testing"
)

func TestTestLoggerCapturesOutput(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected log output to contain keyvals, got %q", out)
	}
}

func TestTestLoggerDebugEnabled(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("test logger should emit debug messages")
	}
}

func TestLogStateTransition(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogStateTransition("reconcile", "BareUpstream", "BoundTo(work)")

	out := buf.String()
	if !strings.Contains(out, "BareUpstream") || !strings.Contains(out, "BoundTo(work)") {
		t.Errorf("expected transition states in output, got %q", out)
	}
}

func TestGetDefaultIsStable(t *testing.T) {
	a := GetDefault()
	b := GetDefault()
	if a != b {
		t.Error("GetDefault should return the same instance")
	}
}
