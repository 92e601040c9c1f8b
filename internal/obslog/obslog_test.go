package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	logger, err := New(Config{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("match_reset", zap.String("match_id", "abc"))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"match_id":"abc"`) {
		t.Fatalf("log line missing field: %s", raw)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("warn"); got != zapcore.WarnLevel {
		t.Fatalf("warn -> %v", got)
	}
	if got := parseLevel("bogus"); got != zapcore.InfoLevel {
		t.Fatalf("bogus -> %v", got)
	}
}

func TestConfigFromEnvFileToggle(t *testing.T) {
	t.Setenv("LOG_TO_FILE", "false")
	if cfg := ConfigFromEnv(); cfg.File != "" {
		t.Fatalf("file sink enabled: %q", cfg.File)
	}
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "x.log")
	if cfg := ConfigFromEnv(); cfg.File != "x.log" {
		t.Fatalf("file = %q", cfg.File)
	}
}
