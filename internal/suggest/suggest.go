// Package suggest provides move suggestion backends for the AI responder.
// A Suggester answers "best move for this FEN" in UCI notation; callers treat
// any error as "no suggestion".
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNoSuggestion is returned when a backend has nothing to offer for a position.
var ErrNoSuggestion = errors.New("no suggestion")

type Suggester interface {
	Suggest(ctx context.Context, fen string) (string, error)
}

// Func adapts a plain function to Suggester.
type Func func(ctx context.Context, fen string) (string, error)

func (f Func) Suggest(ctx context.Context, fen string) (string, error) { return f(ctx, fen) }

// Named pairs a backend with the label used in logs.
type Named struct {
	Name string
	Suggester
}

// Chain asks each backend in order and returns the first answer.
type Chain struct {
	links  []Named
	logger *zap.Logger
}

func NewChain(logger *zap.Logger, links ...Named) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]Named, 0, len(links))
	for _, l := range links {
		if l.Suggester != nil {
			kept = append(kept, l)
		}
	}
	return &Chain{links: kept, logger: logger}
}

func (c *Chain) Len() int { return len(c.links) }

func (c *Chain) Suggest(ctx context.Context, fen string) (string, error) {
	if len(c.links) == 0 {
		return "", ErrNoSuggestion
	}
	var errs []error
	for _, l := range c.links {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mv, err := l.Suggest(ctx, fen)
		if err == nil && strings.TrimSpace(mv) != "" {
			return strings.TrimSpace(mv), nil
		}
		if err == nil {
			err = ErrNoSuggestion
		}
		c.logger.Debug("suggest_backend_failed", zap.String("backend", l.Name), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", l.Name, err))
	}
	return "", errors.Join(errs...)
}

// Cache stores suggestions by position key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, move string) error
}

// Cached memoises a backend's answers. Cache failures never fail the lookup.
type Cached struct {
	next   Suggester
	cache  Cache
	logger *zap.Logger
}

func NewCached(next Suggester, cache Cache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, logger: logger}
}

func (c *Cached) Suggest(ctx context.Context, fen string) (string, error) {
	key := PositionKey(fen)
	if mv, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("suggest_cache_get_failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return mv, nil
	}

	mv, err := c.next.Suggest(ctx, fen)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, mv); err != nil {
		c.logger.Warn("suggest_cache_set_failed", zap.String("key", key), zap.Error(err))
	}
	return mv, nil
}

// PositionKey drops the move counters from a FEN so transpositions share an entry.
func PositionKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
