package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if ValidLevel("bogus") {
		t.Fatal("bogus should be invalid")
	}
	if !ValidLevel("") || !ValidLevel("debug") {
		t.Fatal("expected valid levels")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "type", "java.application")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "type=java.application") {
		t.Fatalf("missing warn record: %q", out)
	}

	buf.Reset()
	NewJSON(&buf, LevelDebug).Debug("json", "k", "v")
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Fatalf("missing json attr: %q", buf.String())
	}
}
