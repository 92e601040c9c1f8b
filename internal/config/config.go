package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	AI       AIConfig       `yaml:"ai"`
	Engine   EngineConfig   `yaml:"engine"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Window   WindowConfig   `yaml:"window"`
	Assets   AssetsConfig   `yaml:"assets"`
	RedisURL string         `yaml:"redis_url"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Messages string         `yaml:"messages_dir"`
}

type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Side    string `yaml:"side"`
	DelayMS int    `yaml:"delay_ms"`
	Seed    int64  `yaml:"seed"`
}

type EngineConfig struct {
	StockfishPath  string `yaml:"stockfish_path"`
	BookPath       string `yaml:"book_path"`
	BookMinWeight  int    `yaml:"book_min_weight"`
	Depth          int    `yaml:"depth"`
	MoveTimeMillis int    `yaml:"movetime_ms"`
	HashMB         int    `yaml:"hash_mb"`
	Threads        int    `yaml:"threads"`
}

type CloudConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

// AIDelay returns the pause before the AI moves.
func (c *AppConfig) AIDelay() time.Duration {
	return time.Duration(c.AI.DelayMS) * time.Millisecond
}

func (c *AppConfig) CloudTimeout() time.Duration {
	return time.Duration(c.Cloud.TimeoutMS) * time.Millisecond
}

func Default() *AppConfig {
	return &AppConfig{
		AI: AIConfig{
			Enabled: true,
			Side:    "black",
			DelayMS: 500,
		},
		Engine: EngineConfig{
			MoveTimeMillis: 300,
			HashMB:         16,
			Threads:        1,
		},
		Cloud: CloudConfig{
			TimeoutMS: 3000,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Chess Game",
		},
		Assets:   AssetsConfig{Dir: "assets"},
		Snapshot: SnapshotConfig{Dir: "snapshots"},
	}
}

// Load reads an optional YAML file and applies environment overrides on top.
// An empty path falls back to CHESS_CONFIG; a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("CHESS_CONFIG"))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_ENABLED")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AI.Enabled = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_SIDE")); v != "" {
		cfg.AI.Side = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AI.DelayMS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AI.Seed = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("STOCKFISH_PATH")); v != "" {
		cfg.Engine.StockfishPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_POLYGLOT_BOOK_PATH")); v != "" {
		cfg.Engine.BookPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.Depth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_MOVETIME_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.MoveTimeMillis = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_CLOUD_EVAL_URL")); v != "" {
		cfg.Cloud.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ASSETS_DIR")); v != "" {
		cfg.Assets.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SNAPSHOT_DIR")); v != "" {
		cfg.Snapshot.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR")); v != "" {
		cfg.Messages = v
	}
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.AI.Side)) {
	case "white", "black":
	default:
		return fmt.Errorf("ai.side must be white or black, got %q", c.AI.Side)
	}
	if c.AI.DelayMS < 0 {
		return fmt.Errorf("ai.delay_ms must be >= 0: %d", c.AI.DelayMS)
	}
	if c.Engine.BookMinWeight < 0 || c.Engine.BookMinWeight > 0xffff {
		return fmt.Errorf("engine.book_min_weight out of range: %d", c.Engine.BookMinWeight)
	}
	if c.Engine.Depth < 0 || c.Engine.MoveTimeMillis < 0 {
		return errors.New("engine limits must be >= 0")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive: %dx%d", c.Window.Width, c.Window.Height)
	}
	if strings.TrimSpace(c.RedisURL) != "" {
		u, err := url.Parse(c.RedisURL)
		if err != nil {
			return fmt.Errorf("redis_url: %w", err)
		}
		if u.Scheme != "redis" && u.Scheme != "rediss" {
			return fmt.Errorf("redis_url: unsupported scheme %q", u.Scheme)
		}
	}
	return nil
}
