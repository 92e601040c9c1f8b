package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CHESS_CONFIG", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.AI.Enabled || cfg.AI.Side != "black" {
		t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.AIDelay() != 500*time.Millisecond {
		t.Fatalf("delay = %v", cfg.AIDelay())
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Fatalf("window = %+v", cfg.Window)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chess.yaml")
	body := []byte("ai:\n  enabled: false\n  side: white\n  delay_ms: 50\nengine:\n  stockfish_path: /usr/bin/stockfish\nredis_url: redis://localhost:6379/1\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("CHESS_AI_DELAY_MS", "900")
	t.Setenv("CHESS_CLOUD_EVAL_URL", "https://lichess.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Enabled || cfg.AI.Side != "white" {
		t.Fatalf("file values not applied: %+v", cfg.AI)
	}
	if cfg.AI.DelayMS != 900 {
		t.Fatalf("env override not applied: %d", cfg.AI.DelayMS)
	}
	if cfg.Engine.StockfishPath != "/usr/bin/stockfish" {
		t.Fatalf("stockfish = %q", cfg.Engine.StockfishPath)
	}
	if cfg.Engine.MoveTimeMillis != 300 {
		t.Fatalf("default movetime lost: %d", cfg.Engine.MoveTimeMillis)
	}
	if cfg.Cloud.BaseURL != "https://lichess.org" {
		t.Fatalf("cloud url = %q", cfg.Cloud.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"side":   func(c *AppConfig) { c.AI.Side = "green" },
		"delay":  func(c *AppConfig) { c.AI.DelayMS = -1 },
		"window": func(c *AppConfig) { c.Window.Width = 0 },
		"redis":  func(c *AppConfig) { c.RedisURL = "http://localhost:6379" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
