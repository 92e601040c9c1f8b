// Package ai runs the computer side's move choice off the frame loop.
//
// One worker goroutine serves one AI turn: it waits the configured delay, asks
// the suggestion backend, checks the answer against the legal move list and
// falls back to a uniformly random legal move. The worker never touches the
// match; its Result is handed back through a channel that only the frame loop
// reads via Poll.
package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/suggest"
)

const DefaultDelay = 500 * time.Millisecond

const (
	SourceEngine = "engine"
	SourceRandom = "random"
)

// Request describes the position the AI must answer.
type Request struct {
	Generation uint64
	Side       match.Side
	FEN        string
	Legal      []match.Move
}

type Result struct {
	Generation uint64
	Move       match.Move
	Source     string
	Elapsed    time.Duration
}

type Option func(*Responder)

func WithDelay(d time.Duration) Option {
	return func(r *Responder) {
		if d >= 0 {
			r.delay = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSeed makes the random fallback reproducible.
func WithSeed(seed int64) Option {
	return func(r *Responder) { r.random = suggest.NewRandom(seed) }
}

type Responder struct {
	suggester suggest.Suggester
	random    *suggest.Random
	delay     time.Duration
	logger    *zap.Logger

	results chan envelope

	mu      sync.Mutex
	seq     uint64
	pending bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type envelope struct {
	seq    uint64
	result Result
}

// New builds a responder. A nil suggester means random moves only.
func New(s suggest.Suggester, opts ...Option) *Responder {
	r := &Responder{
		suggester: s,
		delay:     DefaultDelay,
		logger:    zap.NewNop(),
		results:   make(chan envelope, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.random == nil {
		r.random = suggest.NewRandom(0)
	}
	return r
}

func (r *Responder) SetRandomSeed(seed int64) { r.random.SetRandomSeed(seed) }

// Start launches a worker for req. It returns false when a turn is already
// pending or req has no legal moves.
func (r *Responder) Start(req Request) bool {
	if len(req.Legal) == 0 {
		r.logger.Error("ai_no_legal_moves", zap.String("fen", req.FEN), zap.Stringer("side", req.Side))
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending {
		return false
	}
	r.seq++
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.pending = true

	legal := append([]match.Move(nil), req.Legal...)
	req.Legal = legal
	r.wg.Add(1)
	go r.run(ctx, r.seq, req)
	return true
}

// Poll returns the current turn's result without blocking. Results from
// cancelled turns are discarded.
func (r *Responder) Poll() (Result, bool) {
	for {
		select {
		case env := <-r.results:
			r.mu.Lock()
			current := r.pending && env.seq == r.seq
			if current {
				r.pending = false
				r.cancel()
				r.cancel = nil
			}
			r.mu.Unlock()
			if current {
				return env.result, true
			}
		default:
			return Result{}, false
		}
	}
}

func (r *Responder) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Cancel abandons the pending turn, if any.
func (r *Responder) Cancel() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.pending = false
	r.mu.Unlock()

	for {
		select {
		case <-r.results:
		default:
			return
		}
	}
}

// Close cancels and waits for the worker to exit.
func (r *Responder) Close() {
	r.Cancel()
	r.wg.Wait()
}

func (r *Responder) run(ctx context.Context, seq uint64, req Request) {
	defer r.wg.Done()
	start := time.Now()

	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	mv, source, ok := r.choose(ctx, req)
	if !ok {
		return
	}
	res := Result{Generation: req.Generation, Move: mv, Source: source, Elapsed: time.Since(start)}
	r.logger.Debug("ai_move_chosen",
		zap.String("move_uci", mv.UCI()),
		zap.String("source", source),
		zap.Stringer("side", req.Side),
		zap.Duration("elapsed", res.Elapsed))

	select {
	case r.results <- envelope{seq: seq, result: res}:
	case <-ctx.Done():
	}
}

func (r *Responder) choose(ctx context.Context, req Request) (match.Move, string, bool) {
	if r.suggester != nil {
		raw, err := r.suggester.Suggest(ctx, req.FEN)
		switch {
		case ctx.Err() != nil:
			return match.Move{}, "", false
		case err != nil:
			r.logger.Debug("ai_suggestion_unavailable", zap.String("fen", req.FEN), zap.Error(err))
		default:
			if mv, ok := legalMove(raw, req.Legal); ok {
				return mv, SourceEngine, true
			}
			r.logger.Warn("ai_suggestion_illegal", zap.String("fen", req.FEN), zap.String("move_uci", raw))
		}
	}
	mv, ok := r.random.Pick(req.Legal)
	return mv, SourceRandom, ok
}

func legalMove(raw string, legal []match.Move) (match.Move, bool) {
	mv, err := match.ParseUCI(strings.TrimSpace(raw))
	if err != nil {
		return match.Move{}, false
	}
	for _, l := range legal {
		if l == mv {
			return mv, true
		}
	}
	return match.Move{}, false
}
