package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseLevel(tc.input); got != tc.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	for _, absent := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, absent) {
			t.Errorf("output contains %q below level:\n%s", absent, out)
		}
	}
	for _, present := range []string{"warn 3", "error 4"} {
		if !strings.Contains(out, present) {
			t.Errorf("output missing %q:\n%s", present, out)
		}
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug message missing after SetLevel: %q", buf.String())
	}
}

func TestJSONFormatAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo)
	l.SetOutput(&buf)
	l.SetFormat(FormatJSON)

	l.With("body", "mars").Info("sampled %d instants", 12)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["message"] != "sampled 12 instants" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["body"] != "mars" {
		t.Errorf("body = %v", entry["body"])
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	// Must not panic or write anywhere.
	l.Error("dropped %s", "message")
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) != FormatJSON")
	}
	if ParseFormat("pretty") != FormatConsole {
		t.Error("ParseFormat(pretty) != FormatConsole")
	}
}
