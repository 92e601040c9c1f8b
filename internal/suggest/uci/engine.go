package uci

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/suggest"
)

// Engine answers suggestions from a pool of local UCI processes.
type Engine struct {
	pool   *Pool
	limits Limits
	logger *zap.Logger
}

func NewEngine(cfg PoolConfig, limits Limits) (*Engine, error) {
	if _, err := buildGoTokens(limits); err != nil {
		return nil, err
	}
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{pool: pool, limits: limits, logger: pool.logger}, nil
}

func (e *Engine) Suggest(ctx context.Context, fen string) (string, error) {
	start := time.Now()
	session, err := e.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	var releaseErr error
	defer func() { e.pool.Release(session, releaseErr) }()

	if err := session.NewGame(ctx); err != nil {
		releaseErr = err
		return "", err
	}
	mv, err := session.BestMove(ctx, fen, e.limits)
	if err != nil {
		releaseErr = err
		return "", err
	}
	if mv == "" {
		return "", fmt.Errorf("engine: %w", suggest.ErrNoSuggestion)
	}
	e.logger.Debug("uci_bestmove", zap.String("move_uci", mv), zap.Duration("elapsed", time.Since(start)))
	return mv, nil
}

func (e *Engine) Close() error {
	if e.pool == nil {
		return nil
	}
	return e.pool.Close()
}
