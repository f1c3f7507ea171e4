package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "--:--"},
		{name: "negative", seconds: -4, want: "--:--"},
		{name: "under a minute", seconds: 42, want: "0:42"},
		{name: "minutes", seconds: 215, want: "3:35"},
		{name: "hours", seconds: 3725, want: "1:02:05"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.seconds)
			if got != tt.want {
				t.Errorf("FormatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "player")
		logger.Info("started")

		if !strings.Contains(buf.String(), "component=player") {
			t.Errorf("expected component field in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "groove.log")

		logger, closeLog, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("hello")

		if err := closeLog(); err != nil {
			t.Fatalf("failed to close log file: %v", err)
		}
		if err := closeLog(); err == nil {
			t.Error("expected second close to fail on a released file")
		}

		data, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(data), "hello") {
			t.Errorf("expected log line in file, got %q (%v)", data, err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
