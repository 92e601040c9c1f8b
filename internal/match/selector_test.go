package match

import "testing"

func TestSelectionOnlyOnOwnPieces(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		"4k3/P7/8/8/8/8/p7/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		pos, err := StandardRules{}.FromFEN(fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", fen, err)
		}
		for s := Square(0); s < 64; s++ {
			sel := NewSelector()
			_, moved, selected := sel.Select(pos, s)
			if moved {
				t.Fatalf("%s: first pick on %v produced a move", fen, s)
			}
			pc, ok := pos.PieceAt(s)
			own := ok && pc.Side == pos.Turn()
			if selected != own || sel.Active() != own {
				t.Fatalf("%s: square %v selected=%v active=%v, own piece=%v", fen, s, selected, sel.Active(), own)
			}
		}
	}
}

func TestAutoQueenPromotion(t *testing.T) {
	cases := []struct {
		fen      string
		from, to string
	}{
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7", "a8"},
		{"4k3/8/8/8/8/8/p7/4K3 b - - 0 1", "a2", "a1"},
	}
	for _, tc := range cases {
		pos, err := StandardRules{}.FromFEN(tc.fen)
		if err != nil {
			t.Fatalf("FromFEN: %v", err)
		}
		sel := NewSelector()
		if _, _, selected := sel.Select(pos, sq(t, tc.from)); !selected {
			t.Fatalf("%s: pawn not selected", tc.fen)
		}
		mv, ok, _ := sel.Select(pos, sq(t, tc.to))
		if !ok {
			t.Fatalf("%s: no move produced", tc.fen)
		}
		if mv.Promo != Queen {
			t.Fatalf("%s: promo = %v, want queen", tc.fen, mv.Promo)
		}
		if _, err := pos.Apply(mv); err != nil {
			t.Fatalf("%s: promotion rejected: %v", tc.fen, err)
		}
		pc, _ := pos.PieceAt(sq(t, tc.to))
		if pc.Kind != Queen {
			t.Fatalf("%s: piece on %s = %+v", tc.fen, tc.to, pc)
		}
	}
}

func TestSecondPickAlwaysClears(t *testing.T) {
	pos := StandardRules{}.NewPosition()
	picks := []Square{sq(t, "e2"), NoSquare, Square(99), sq(t, "e5"), sq(t, "d2")}
	for _, second := range picks {
		sel := NewSelector()
		sel.Select(pos, sq(t, "e2"))
		if _, ok, _ := sel.Select(pos, second); ok {
			t.Fatalf("pick %v produced a move", second)
		}
		if sel.Active() {
			t.Fatalf("selection survived pick %v", second)
		}
		if sel.Destinations() != nil {
			t.Fatalf("destinations survived pick %v", second)
		}
	}
}

func TestSelectorDoesNotMutatePosition(t *testing.T) {
	pos := StandardRules{}.NewPosition()
	before := pos.FEN()
	sel := NewSelector()
	sel.Select(pos, sq(t, "g1"))
	if _, ok, _ := sel.Select(pos, sq(t, "f3")); !ok {
		t.Fatalf("g1f3 not produced")
	}
	if pos.FEN() != before {
		t.Fatalf("selector changed position: %q", pos.FEN())
	}
}

func TestParseUCIRoundTrip(t *testing.T) {
	for _, raw := range []string{"e2e4", "a7a8q", "h2h1n"} {
		mv, err := ParseUCI(raw)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", raw, err)
		}
		if mv.UCI() != raw {
			t.Fatalf("UCI() = %q, want %q", mv.UCI(), raw)
		}
	}
	for _, raw := range []string{"", "e2", "e2e9", "i2e4", "e7e8x"} {
		if _, err := ParseUCI(raw); err == nil {
			t.Fatalf("ParseUCI(%q) accepted", raw)
		}
	}
}
