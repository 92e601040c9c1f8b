package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/suggest"
	"github.com/park285/cheese-board/internal/testutil"
)

func startRequest(t *testing.T, fen string) Request {
	t.Helper()
	m, err := match.New(match.StandardRules{}, match.WithStartFEN(fen))
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	return Request{Generation: m.Generation(), Side: m.Turn(), FEN: m.FEN(), Legal: m.LegalMoves()}
}

func waitResult(t *testing.T, r *Responder) Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := r.Poll(); ok {
			return res
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("no result before deadline")
	return Result{}
}

func contains(moves []match.Move, mv match.Move) bool {
	for _, m := range moves {
		if m == mv {
			return true
		}
	}
	return false
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestIllegalSuggestionFallsBackToRandomLegalMove(t *testing.T) {
	req := startRequest(t, startFEN)
	illegal := suggest.Func(func(context.Context, string) (string, error) { return "e2e5", nil })
	r := New(illegal, WithDelay(0), WithSeed(42))
	defer r.Close()

	if !r.Start(req) {
		t.Fatalf("Start refused")
	}
	res := waitResult(t, r)
	if res.Source != SourceRandom {
		t.Fatalf("source = %s", res.Source)
	}
	if !contains(req.Legal, res.Move) {
		t.Fatalf("random move %v not legal", res.Move)
	}
	if r.Pending() {
		t.Fatalf("still pending after result")
	}
}

func TestLegalSuggestionIsUsed(t *testing.T) {
	req := startRequest(t, startFEN)
	var seen atomic.Value
	s := suggest.Func(func(_ context.Context, fen string) (string, error) { seen.Store(fen); return "g1f3\n", nil })
	r := New(s, WithDelay(0))
	defer r.Close()

	if !r.Start(req) {
		t.Fatalf("Start refused")
	}
	res := waitResult(t, r)
	testutil.AssertEqual(t, res.Move.UCI(), "g1f3")
	testutil.AssertEqual(t, res.Source, SourceEngine)
	testutil.AssertEqual(t, res.Generation, req.Generation)
	if seen.Load() != req.FEN {
		t.Fatalf("suggester saw %v", seen.Load())
	}
}

func TestSuggesterErrorFallsBack(t *testing.T) {
	req := startRequest(t, startFEN)
	r := New(suggest.Func(func(context.Context, string) (string, error) { return "", errors.New("engine down") }), WithDelay(0), WithSeed(1))
	defer r.Close()

	r.Start(req)
	res := waitResult(t, r)
	if res.Source != SourceRandom || !contains(req.Legal, res.Move) {
		t.Fatalf("result = %+v", res)
	}
}

func TestNilSuggesterPromotesOnlyLegalMoves(t *testing.T) {
	req := startRequest(t, "8/P7/8/8/8/8/8/k6K w - - 0 1")
	r := New(nil, WithDelay(0), WithSeed(3))
	defer r.Close()
	for i := 0; i < 5; i++ {
		if !r.Start(req) {
			t.Fatalf("Start refused on round %d", i)
		}
		res := waitResult(t, r)
		if !contains(req.Legal, res.Move) {
			t.Fatalf("move %v not legal", res.Move)
		}
	}
}

func TestStartWhilePendingIsRefused(t *testing.T) {
	req := startRequest(t, startFEN)
	r := New(nil, WithDelay(time.Hour))
	defer r.Close()

	if !r.Start(req) {
		t.Fatalf("first Start refused")
	}
	if r.Start(req) {
		t.Fatalf("second Start accepted while pending")
	}
	if !r.Pending() {
		t.Fatalf("not pending")
	}
}

func TestCancelDropsPendingTurn(t *testing.T) {
	req := startRequest(t, startFEN)
	block := make(chan struct{})
	var once sync.Once
	s := suggest.Func(func(ctx context.Context, _ string) (string, error) {
		once.Do(func() { close(block) })
		<-ctx.Done()
		return "", ctx.Err()
	})
	r := New(s, WithDelay(0))

	r.Start(req)
	<-block
	r.Cancel()
	if r.Pending() {
		t.Fatalf("pending after Cancel")
	}
	r.Close()
	if _, ok := r.Poll(); ok {
		t.Fatalf("cancelled turn delivered a result")
	}

	if !r.Start(req) {
		t.Fatalf("Start after Cancel refused")
	}
	r.Close()
}

func TestEmptyLegalSetStartsNothing(t *testing.T) {
	r := New(nil, WithDelay(0))
	defer r.Close()
	if r.Start(Request{FEN: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"}) {
		t.Fatalf("Start accepted with no legal moves")
	}
	if r.Pending() {
		t.Fatalf("pending with no worker")
	}
}
