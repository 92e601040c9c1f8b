package book

import (
	"path/filepath"
	"testing"

	"github.com/park285/cheese-board/internal/testutil"
)

func TestRankPrefersWeightThenMoveText(t *testing.T) {
	got := rank([]candidate{{"g1f3", 10}, {"e2e4", 40}, {"d2d4", 40}, {"c2c4", 5}})
	testutil.AssertEqual(t, []string{got[0].move, got[1].move, got[2].move, got[3].move}, []string{"d2d4", "e2e4", "g1f3", "c2c4"})
}

func TestNormalizeCastling(t *testing.T) {
	game, err := gameFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("gameFromFEN: %v", err)
	}
	testutil.AssertEqual(t, normalizeCastling(game, "e1h1"), "e1g1")
	testutil.AssertEqual(t, normalizeCastling(game, "e1a1"), "e1c1")
	testutil.AssertEqual(t, normalizeCastling(game, "e8h8"), "e8g8")
	testutil.AssertEqual(t, normalizeCastling(game, "a1a8"), "a1a8")

	// a rook on e1 sliding to h1 is not castling
	rookGame, err := gameFromFEN("4k3/8/8/8/8/8/8/K3R3 w - - 0 1")
	if err != nil {
		t.Fatalf("gameFromFEN: %v", err)
	}
	testutil.AssertEqual(t, normalizeCastling(rookGame, "e1h1"), "e1h1")
}

func TestSquareFromString(t *testing.T) {
	sq, err := squareFromString("a1")
	if err != nil || sq != 0 {
		t.Fatalf("a1 = %v, %v", sq, err)
	}
	sq, err = squareFromString("h8")
	if err != nil || sq != 63 {
		t.Fatalf("h8 = %v, %v", sq, err)
	}
	if _, err := squareFromString("i9"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected empty path error")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestGameFromFENRejectsGarbage(t *testing.T) {
	if _, err := gameFromFEN("not a fen"); err == nil {
		t.Fatalf("expected fen error")
	}
	if _, err := gameFromFEN("startpos"); err != nil {
		t.Fatalf("startpos: %v", err)
	}
}
