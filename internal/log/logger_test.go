package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_ComponentAttached(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentImport,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("batch started", FieldBatchID, "b1")

	out := buf.String()
	if !strings.Contains(out, "component=import") {
		t.Errorf("output missing component attribute: %s", out)
	}
	if !strings.Contains(out, "batch_id=b1") {
		t.Errorf("output missing batch id: %s", out)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	derived := logger.WithComponent(ComponentWorker)
	if derived.Component() != ComponentWorker {
		t.Errorf("Component() = %q, want worker", derived.Component())
	}
	if logger.Component() != ComponentApp {
		t.Error("deriving must not mutate the parent logger")
	}
}
