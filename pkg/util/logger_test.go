package util

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewLogger(&buf, slog.LevelInfo)
	l.Debug("hidden")
	l.With("fd", 3).Info("bind failed", "errno", 98)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("Logger error, want debug filtered, received %q", out)
	}
	for _, want := range []string{"INFO:", "bind failed", "fd=3", "errno=98"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Logger error, want %q in output, received %q", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		" WARN ": slog.LevelWarn,
		"error":  slog.LevelError,
		"":       slog.LevelInfo,
		"bogus":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel error, want %s, received %s", want, got)
		}
	}
}

func TestParsePort(t *testing.T) {
	if p, err := ParsePort("1212"); err != nil || p != DEFAULT_PORT {
		t.Fatalf("ParsePort error, want %d, received %d (%v)", DEFAULT_PORT, p, err)
	}
	for _, in := range []string{"", "-1", "65536", "http"} {
		if _, err := ParsePort(in); err == nil {
			t.Fatalf("ParsePort error, want failure for %q", in)
		}
	}
}
