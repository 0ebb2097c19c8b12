package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentNilIsSilent(t *testing.T) {
	l := Component(nil, "surface")
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger should produce a disabled logger")
	}
}

func TestComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, "debug"), "history")
	l.Debug("pushed")
	if !strings.Contains(buf.String(), "component=history") {
		t.Errorf("missing component attr in %q", buf.String())
	}
}
