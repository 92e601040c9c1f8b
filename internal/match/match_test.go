package match

import (
	"sort"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/testutil"
)

func newTestMatch(t *testing.T, opts ...Option) *Match {
	t.Helper()
	m, err := New(StandardRules{}, opts...)
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	return m
}

func mustMove(t *testing.T, raw string) Move {
	t.Helper()
	mv, err := ParseUCI(raw)
	if err != nil {
		t.Fatalf("ParseUCI(%q): %v", raw, err)
	}
	return mv
}

func sq(t *testing.T, raw string) Square {
	t.Helper()
	s, err := ParseSquare(raw)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", raw, err)
	}
	return s
}

func TestCheckmateWinnerIsMover(t *testing.T) {
	cases := []struct {
		name   string
		fen    string
		move   string
		winner Side
	}{
		{"white mates", "6k1/8/6K1/8/8/8/8/R7 w - - 0 1", "a1a8", White},
		{"black mates", "r7/8/8/8/8/6k1/8/6K1 b - - 0 1", "a8a1", Black},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t, WithStartFEN(tc.fen))
			out, ok := m.Apply(mustMove(t, tc.move))
			if !ok {
				t.Fatalf("mating move rejected")
			}
			if out.Status != Checkmate {
				t.Fatalf("status = %v, want checkmate", out.Status)
			}
			winner, has := m.Winner()
			if !has || winner != tc.winner {
				t.Fatalf("winner = %v (%v), want %v", winner, has, tc.winner)
			}
			testutil.AssertEqual(t, out.Cues, []Cue{CueCheck, CueCheckmate})
		})
	}
}

func TestStalemateAndInsufficientMaterial(t *testing.T) {
	m := newTestMatch(t, WithStartFEN("7k/8/8/5Q2/8/8/8/K7 w - - 0 1"))
	out, ok := m.Apply(mustMove(t, "f5g6"))
	if !ok {
		t.Fatalf("f5g6 rejected")
	}
	if out.Status != Stalemate {
		t.Fatalf("status = %v, want stalemate", out.Status)
	}
	if _, has := m.Winner(); has {
		t.Fatalf("stalemate must not have a winner")
	}
	testutil.AssertEqual(t, out.Cues, []Cue{CueMove, CueStalemate})

	m = newTestMatch(t, WithStartFEN("8/8/8/4k3/8/8/3p4/2B1K3 w - - 0 1"))
	out, ok = m.Apply(mustMove(t, "c1d2"))
	if !ok {
		t.Fatalf("c1d2 rejected")
	}
	if out.Status != Draw {
		t.Fatalf("status = %v, want draw", out.Status)
	}
	if out.Event != Capture {
		t.Fatalf("event = %v, want capture", out.Event)
	}
	if snap := m.Snapshot(); snap.Reason != "insufficient material" {
		t.Fatalf("reason = %q", snap.Reason)
	}
}

func TestCheckTakesPrecedenceOverCapture(t *testing.T) {
	m := newTestMatch(t, WithStartFEN("4k3/8/8/8/8/8/4p3/4R1K1 w - - 0 1"))
	out, ok := m.Apply(mustMove(t, "e1e2"))
	if !ok {
		t.Fatalf("e1e2 rejected")
	}
	if out.Event != Check {
		t.Fatalf("event = %v, want check", out.Event)
	}

	m = newTestMatch(t, WithStartFEN("4k3/8/8/8/8/8/p7/R5K1 w - - 0 1"))
	out, ok = m.Apply(mustMove(t, "a1a2"))
	if !ok {
		t.Fatalf("a1a2 rejected")
	}
	if out.Event != Capture {
		t.Fatalf("event = %v, want capture", out.Event)
	}
	testutil.AssertEqual(t, out.Cues, []Cue{CueCapture})
}

func TestApplyIsNoOpWhenStale(t *testing.T) {
	m := newTestMatch(t)
	mv := mustMove(t, "e2e4")
	if _, ok := m.Apply(mv); !ok {
		t.Fatalf("first e2e4 rejected")
	}
	before := m.Snapshot()
	if _, ok := m.Apply(mv); ok {
		t.Fatalf("second e2e4 accepted")
	}
	after := m.Snapshot()
	if before.FEN != after.FEN || before.Turn != after.Turn {
		t.Fatalf("stale apply changed position: %q -> %q", before.FEN, after.FEN)
	}
}

func TestApplyAtDropsPreviousGeneration(t *testing.T) {
	m := newTestMatch(t)
	gen := m.Generation()
	m.Reset()
	if _, ok := m.ApplyAt(gen, mustMove(t, "e2e4")); ok {
		t.Fatalf("move from previous generation accepted")
	}
	if _, ok := m.ApplyAt(m.Generation(), mustMove(t, "e2e4")); !ok {
		t.Fatalf("current generation move rejected")
	}
}

func TestClockAccruesOnlyToSideOnMove(t *testing.T) {
	m := newTestMatch(t)
	t0 := time.Unix(1_700_000_000, 0)

	m.Tick(t0)
	m.Tick(t0.Add(5 * time.Second))
	if got := m.Remaining(White); got != DefaultClock {
		t.Fatalf("clock ran before first move: %v", got)
	}

	m.Apply(mustMove(t, "e2e4"))
	m.Tick(t0.Add(10 * time.Second))
	if got := m.Remaining(Black); got != DefaultClock {
		t.Fatalf("first tick after start deducted time: %v", got)
	}

	m.Tick(t0.Add(12 * time.Second))
	if got := m.Remaining(Black); got != DefaultClock-2*time.Second {
		t.Fatalf("black = %v, want %v", got, DefaultClock-2*time.Second)
	}
	if got := m.Remaining(White); got != DefaultClock {
		t.Fatalf("white lost time while black on move: %v", got)
	}

	m.Apply(mustMove(t, "e7e5"))
	m.Tick(t0.Add(15 * time.Second))
	if got := m.Remaining(White); got != DefaultClock-3*time.Second {
		t.Fatalf("white = %v, want %v", got, DefaultClock-3*time.Second)
	}
	if got := m.Remaining(Black); got != DefaultClock-2*time.Second {
		t.Fatalf("black changed while white on move: %v", got)
	}
}

func TestTimeoutClampsToZero(t *testing.T) {
	m := newTestMatch(t, WithClock(3*time.Second))
	t0 := time.Unix(1_700_000_000, 0)
	m.Apply(mustMove(t, "e2e4"))
	m.Tick(t0)
	out := m.Tick(t0.Add(3 * time.Second))
	if out.Status != Timeout {
		t.Fatalf("status = %v, want timeout", out.Status)
	}
	testutil.AssertEqual(t, out.Cues, []Cue{CueTimeout})
	if got := m.Remaining(Black); got != 0 {
		t.Fatalf("black = %v, want 0", got)
	}
	winner, has := m.Winner()
	if !has || winner != White {
		t.Fatalf("winner = %v (%v), want white", winner, has)
	}

	m2 := newTestMatch(t, WithClock(time.Second))
	m2.Apply(mustMove(t, "e2e4"))
	m2.Tick(t0)
	m2.Tick(t0.Add(4 * time.Second))
	if got := m2.Remaining(Black); got != 0 {
		t.Fatalf("overdrawn clock = %v, want 0", got)
	}
}

func TestTerminalStatusIsAbsorbing(t *testing.T) {
	m := newTestMatch(t, WithClock(time.Second))
	t0 := time.Unix(1_700_000_000, 0)
	m.Apply(mustMove(t, "e2e4"))
	m.Tick(t0)
	m.Tick(t0.Add(2 * time.Second))
	if m.Status() != Timeout {
		t.Fatalf("status = %v, want timeout", m.Status())
	}

	fen := m.FEN()
	for _, raw := range []string{"e7e5", "g8f6", "d7d5"} {
		if _, ok := m.Apply(mustMove(t, raw)); ok {
			t.Fatalf("%s accepted after timeout", raw)
		}
	}
	m.Click(sq(t, "e7"))
	m.Click(sq(t, "e5"))
	m.Tick(t0.Add(10 * time.Second))
	if m.Status() != Timeout || m.FEN() != fen {
		t.Fatalf("terminal state changed: %v %q", m.Status(), m.FEN())
	}
	if snap := m.Snapshot(); snap.Selected != NoSquare {
		t.Fatalf("selection formed after timeout: %v", snap.Selected)
	}
}

func TestPawnDoubleStepByClicks(t *testing.T) {
	m := newTestMatch(t)
	out := m.Click(sq(t, "e2"))
	testutil.AssertEqual(t, out.Cues, []Cue{CueSelect})
	snap := m.Snapshot()
	if snap.Selected != sq(t, "e2") {
		t.Fatalf("selected = %v, want e2", snap.Selected)
	}
	dests := append([]Square(nil), snap.Destinations...)
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
	testutil.AssertEqual(t, dests, []Square{sq(t, "e3"), sq(t, "e4")})

	out = m.Click(sq(t, "e4"))
	if !out.Moved || out.Move.UCI() != "e2e4" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	snap = m.Snapshot()
	if snap.Selected != NoSquare || len(snap.Destinations) != 0 {
		t.Fatalf("selection not cleared: %v %v", snap.Selected, snap.Destinations)
	}
	if snap.Turn != Black {
		t.Fatalf("turn = %v, want black", snap.Turn)
	}
	if !snap.Started {
		t.Fatalf("match not started after first move")
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	m := newTestMatch(t)
	initial := StandardRules{}.NewPosition().FEN()
	t0 := time.Unix(1_700_000_000, 0)
	firstID := m.ID()

	m.Apply(mustMove(t, "e2e4"))
	m.Tick(t0)
	m.Tick(t0.Add(7 * time.Second))
	m.Apply(mustMove(t, "e7e5"))
	m.Click(sq(t, "g1"))

	out := m.Reset()
	testutil.AssertEqual(t, out.Cues, []Cue{CueSelect})
	snap := m.Snapshot()
	if snap.FEN != initial {
		t.Fatalf("fen = %q, want %q", snap.FEN, initial)
	}
	testutil.AssertEqual(t, snap.Remaining, [SideCount]time.Duration{DefaultClock, DefaultClock})
	if snap.Selected != NoSquare || snap.Destinations != nil {
		t.Fatalf("selection survived reset")
	}
	if snap.Status != InProgress || snap.Started || snap.HasLastMove {
		t.Fatalf("unexpected state after reset: %+v", snap)
	}
	if snap.ID == firstID {
		t.Fatalf("reset kept match id %q", firstID)
	}

	m.Tick(t0.Add(20 * time.Second))
	if got := m.Remaining(White); got != DefaultClock {
		t.Fatalf("clock ran after reset: %v", got)
	}
}

func TestNewRejectsBadStartFEN(t *testing.T) {
	_, err := New(StandardRules{}, WithStartFEN("not a fen"))
	testutil.AssertError(t, err)
}

func TestInCheckReadFromLoadedPosition(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want bool
	}{
		{"start", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", false},
		{"rook on file", "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1", true},
		{"rook blocked", "4k3/8/8/8/4r3/8/4P3/4K3 w - - 0 1", false},
		{"bishop diagonal", "4k3/8/8/b7/8/8/8/4K3 w - - 0 1", true},
		{"bishop blocked", "4k3/8/8/b7/8/2P5/8/4K3 w - - 0 1", false},
		{"knight", "4k3/8/3N4/8/8/8/8/4K3 b - - 0 1", true},
		{"white pawn", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", true},
		{"pawn straight ahead", "4k3/4P3/8/8/8/8/8/4K3 b - - 0 1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t, WithStartFEN(tc.fen))
			if got := m.Snapshot().InCheck; got != tc.want {
				t.Fatalf("InCheck = %v, want %v", got, tc.want)
			}
		})
	}
}
