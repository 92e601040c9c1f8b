package match

// Selector turns two square picks into one move request.
// It never mutates the position it reads from.
type Selector struct {
	source Square
	dests  []Move
}

func NewSelector() *Selector {
	return &Selector{source: NoSquare}
}

// Source returns the selected square, or NoSquare.
func (s *Selector) Source() Square { return s.source }

func (s *Selector) Active() bool { return s.source != NoSquare }

// Destinations returns the squares the selected piece may move to.
func (s *Selector) Destinations() []Square {
	if len(s.dests) == 0 {
		return nil
	}
	out := make([]Square, 0, len(s.dests))
	seen := make(map[Square]struct{}, len(s.dests))
	for _, mv := range s.dests {
		if _, ok := seen[mv.To]; ok {
			continue
		}
		seen[mv.To] = struct{}{}
		out = append(out, mv.To)
	}
	return out
}

func (s *Selector) Clear() {
	s.source = NoSquare
	s.dests = nil
}

// Select handles one pick.
//
// Without a selection, a square holding a piece of the side to move becomes
// the source and selected reports true. With a selection, a legal destination
// yields a move (queen promotion for pawns reaching the last rank); any other
// square yields nothing. The selection is cleared after every second pick.
func (s *Selector) Select(pos Position, sq Square) (mv Move, ok bool, selected bool) {
	if !s.Active() {
		if !sq.Valid() {
			return Move{}, false, false
		}
		pc, found := pos.PieceAt(sq)
		if !found || pc.Side != pos.Turn() {
			return Move{}, false, false
		}
		var dests []Move
		for _, cand := range pos.LegalMoves() {
			if cand.From == sq {
				dests = append(dests, cand)
			}
		}
		s.source = sq
		s.dests = dests
		return Move{}, false, true
	}

	defer s.Clear()
	if !sq.Valid() || sq == s.source {
		return Move{}, false, false
	}
	for _, cand := range s.dests {
		if cand.To != sq {
			continue
		}
		mv = Move{From: s.source, To: sq}
		if pc, found := pos.PieceAt(s.source); found && pc.Kind == Pawn && promotionRank(pc.Side) == sq.Rank() {
			mv.Promo = Queen
		}
		return mv, true, false
	}
	return Move{}, false, false
}

func promotionRank(side Side) int {
	if side == White {
		return 7
	}
	return 0
}
