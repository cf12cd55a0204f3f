package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesLogDir(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}

	Warn("streak recompute skipped", "habit", "reading")
}

func TestLevelFollowsDebugFlag(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "normal mode drops debug", debug: false, wantDebug: false},
		{name: "debug mode keeps debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Init(Config{Debug: tt.debug, Output: &buf}); err != nil {
				t.Fatalf("Init() error = %v", err)
			}

			Debug("recomputed streak", "current", 3)
			Warn("slow query", "ms", 120)

			out := buf.String()
			if got := strings.Contains(out, "recomputed streak"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v (output %q)", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "slow query") {
				t.Errorf("warn line missing from output %q", out)
			}
			if !strings.Contains(out, "streakline") {
				t.Errorf("prefix missing from output %q", out)
			}
		})
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// Must not panic
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}
