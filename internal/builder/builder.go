// Package builder wires configuration into a ready-to-run game.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/ai"
	"github.com/park285/cheese-board/internal/assets"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/desktop"
	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/suggest"
	"github.com/park285/cheese-board/internal/suggest/book"
	"github.com/park285/cheese-board/internal/suggest/cache"
	"github.com/park285/cheese-board/internal/suggest/cloud"
	"github.com/park285/cheese-board/internal/suggest/uci"
)

const memoryCacheEntries = 4096

type Deps struct {
	Match      *match.Match
	Responder  *ai.Responder
	Renderer   *render.Renderer
	Messages   *msgcat.Catalog
	Sounds     *assets.Sounds
	Controller *desktop.Controller

	engine *uci.Engine
	redis  *cache.Redis
}

// SinkFactory builds the audio sink once cue clips are loaded.
type SinkFactory func(*assets.Sounds) desktop.Sink

// New builds every component but the window. A nil audio factory mutes cues.
func New(cfg *config.AppConfig, audio SinkFactory, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	aiSide, err := match.ParseSide(cfg.AI.Side)
	if err != nil {
		return nil, fmt.Errorf("ai side: %w", err)
	}

	msgs, err := msgcat.New(cfg.Messages)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	layout := render.CenteredLayout(cfg.Window.Width, cfg.Window.Height, render.DefaultLayout().Square)
	pieces, err := assets.LoadPieces(cfg.Assets.Dir, layout.Square, logger)
	if err != nil {
		return nil, fmt.Errorf("load pieces: %w", err)
	}
	sounds := assets.LoadSounds(cfg.Assets.Dir, logger)
	renderer, err := render.New(layout, pieces, msgs)
	if err != nil {
		return nil, err
	}

	d := &Deps{Messages: msgs, Sounds: sounds, Renderer: renderer}

	s, err := d.buildSuggester(cfg, logger)
	if err != nil {
		_ = d.Close()
		return nil, err
	}

	m, err := match.New(match.StandardRules{}, match.WithLogger(logger))
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Match = m
	var sink desktop.Sink
	if audio != nil {
		sink = audio(sounds)
	}
	d.Responder = ai.New(s,
		ai.WithDelay(cfg.AIDelay()),
		ai.WithSeed(cfg.AI.Seed),
		ai.WithLogger(logger),
	)
	d.Controller = desktop.NewController(m, d.Responder, renderer, desktop.Options{
		AIEnabled:   cfg.AI.Enabled,
		AISide:      aiSide,
		SnapshotDir: cfg.Snapshot.Dir,
		Messages:    msgs,
		Sink:        sink,
		Logger:      logger,
	})
	logger.Info("game_built",
		zap.String("match_id", m.ID()),
		zap.Bool("ai_enabled", cfg.AI.Enabled),
		zap.Stringer("ai_side", aiSide),
	)
	return d, nil
}

// buildSuggester returns nil when no backend is configured; the responder
// then plays random legal moves.
func (d *Deps) buildSuggester(cfg *config.AppConfig, logger *zap.Logger) (suggest.Suggester, error) {
	var links []suggest.Named

	if path := strings.TrimSpace(cfg.Engine.BookPath); path != "" {
		b, err := book.Open(path, book.WithMinWeight(uint16(cfg.Engine.BookMinWeight)), book.WithLogger(logger))
		if err != nil {
			logger.Warn("book_unavailable", zap.String("path", path), zap.Error(err))
		} else {
			links = append(links, suggest.Named{Name: "book", Suggester: b})
		}
	}

	if path := strings.TrimSpace(cfg.Engine.StockfishPath); path != "" {
		engine, err := uci.NewEngine(uci.PoolConfig{
			BinaryPath: path,
			Options:    uci.Options{Threads: cfg.Engine.Threads, HashMB: cfg.Engine.HashMB},
			Logger:     logger,
		}, uci.Limits{Depth: cfg.Engine.Depth, MoveTimeMillis: cfg.Engine.MoveTimeMillis})
		if err != nil {
			// a missing engine degrades to the remaining backends
			logger.Warn("engine_unavailable", zap.String("path", path), zap.Error(err))
		} else {
			d.engine = engine
			links = append(links, suggest.Named{Name: "uci", Suggester: engine})
		}
	}

	if base := strings.TrimSpace(cfg.Cloud.BaseURL); base != "" {
		links = append(links, suggest.Named{Name: "cloud", Suggester: cloud.NewClient(base,
			cloud.WithTimeout(cfg.CloudTimeout()),
			cloud.WithLogger(logger),
		)})
	}

	if len(links) == 0 {
		logger.Info("suggest_backends_none")
		return nil, nil
	}

	c, err := d.buildCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	return suggest.NewCached(suggest.NewChain(logger, links...), c, logger), nil
}

func (d *Deps) buildCache(cfg *config.AppConfig, logger *zap.Logger) (suggest.Cache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.NewMemory(memoryCacheEntries), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rc := cache.NewRedis(redis.NewClient(opts), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		logger.Warn("redis_unavailable", zap.String("addr", opts.Addr), zap.Error(err))
		return cache.NewMemory(memoryCacheEntries), nil
	}
	d.redis = rc
	return rc, nil
}

// Close stops the AI worker and releases engine processes and connections.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	if d.Controller != nil {
		d.Controller.Close()
	}
	var errs []error
	if d.engine != nil {
		errs = append(errs, d.engine.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	return errors.Join(errs...)
}
