package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"development", "production", "PROD", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("new %q: %v", mode, err)
		}
		if l.SugaredLogger == nil {
			t.Fatalf("new %q: nil sugared logger", mode)
		}
	}
}

func TestWith_CarriesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("file", "a.xlsx").Warn("跳过工作表", "sheet", "Notes")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["file"] != "a.xlsx" || ctx["sheet"] != "Notes" {
		t.Fatalf("unexpected context: %v", ctx)
	}
	if OrNop(nil) == nil {
		t.Fatalf("OrNop(nil) must not be nil")
	}
}
