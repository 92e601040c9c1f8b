package match

import (
	"errors"
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

var ErrIllegalMove = errors.New("illegal move")

// Position is one mutable game owned by the rules engine.
type Position interface {
	Turn() Side
	LegalMoves() []Move
	PieceAt(sq Square) (Piece, bool)
	// Apply plays mv if it is legal and reports how the move should be announced.
	Apply(mv Move) (Event, error)
	// Terminal classifies the current position. reason is set for draws.
	Terminal() (status Status, reason string)
	InCheck() bool
	FEN() string
}

// Rules creates positions.
type Rules interface {
	NewPosition() Position
	FromFEN(fen string) (Position, error)
}

// StandardRules is backed by corentings/chess.
type StandardRules struct{}

func (StandardRules) NewPosition() Position {
	return &gamePosition{game: nchess.NewGame()}
}

func (StandardRules) FromFEN(fen string) (Position, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &gamePosition{game: nchess.NewGame(opt)}, nil
}

type gamePosition struct {
	game *nchess.Game
}

func (p *gamePosition) Turn() Side {
	return sideFrom(p.game.Position().Turn())
}

func (p *gamePosition) LegalMoves() []Move {
	valid := p.game.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, mv := range valid {
		out = append(out, Move{
			From:  Square(mv.S1()),
			To:    Square(mv.S2()),
			Promo: kindFrom(mv.Promo()),
		})
	}
	return out
}

func (p *gamePosition) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	pc := p.game.Position().Board().Piece(nchess.Square(sq))
	if pc == nchess.NoPiece {
		return Piece{}, false
	}
	return Piece{Side: sideFrom(pc.Color()), Kind: kindFrom(pc.Type())}, true
}

func (p *gamePosition) Apply(mv Move) (Event, error) {
	event, ok := QuietMove, false
	for _, cand := range p.game.ValidMoves() {
		if Square(cand.S1()) != mv.From || Square(cand.S2()) != mv.To || kindFrom(cand.Promo()) != mv.Promo {
			continue
		}
		ok = true
		switch {
		case cand.HasTag(nchess.Check):
			event = Check
		case cand.HasTag(nchess.Capture), cand.HasTag(nchess.EnPassant):
			event = Capture
		}
		break
	}
	if !ok {
		return QuietMove, fmt.Errorf("%w: %s", ErrIllegalMove, mv.UCI())
	}
	if err := p.game.PushNotationMove(mv.UCI(), nchess.UCINotation{}, nil); err != nil {
		return QuietMove, fmt.Errorf("push %s: %w", mv.UCI(), err)
	}
	return event, nil
}

func (p *gamePosition) Terminal() (Status, string) {
	if p.game.Outcome() == nchess.NoOutcome {
		return InProgress, ""
	}
	switch p.game.Method() {
	case nchess.Checkmate:
		return Checkmate, ""
	case nchess.Stalemate:
		return Stalemate, "stalemate"
	case nchess.InsufficientMaterial:
		return Draw, "insufficient material"
	case nchess.FivefoldRepetition:
		return Draw, "fivefold repetition"
	case nchess.SeventyFiveMoveRule:
		return Draw, "seventy-five move rule"
	}
	return Draw, "draw"
}

// InCheck reports whether the side to move has its king attacked, read from
// the board so positions loaded by FEN are covered too.
func (p *gamePosition) InCheck() bool {
	board := p.game.Position().Board()
	turn := p.game.Position().Turn()
	for i := 0; i < 64; i++ {
		pc := board.Piece(nchess.Square(i))
		if pc.Type() == nchess.King && pc.Color() == turn {
			return attacked(board, Square(i), turn.Other())
		}
	}
	return false
}

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// attacked reports whether any piece of side by attacks sq.
func attacked(board *nchess.Board, sq Square, by nchess.Color) bool {
	at := func(file, rank int) (nchess.Piece, bool) {
		if file < 0 || file > 7 || rank < 0 || rank > 7 {
			return nchess.NoPiece, false
		}
		return board.Piece(nchess.Square(SquareAt(file, rank))), true
	}
	is := func(pc nchess.Piece, types ...nchess.PieceType) bool {
		if pc == nchess.NoPiece || pc.Color() != by {
			return false
		}
		for _, t := range types {
			if pc.Type() == t {
				return true
			}
		}
		return false
	}
	f, r := sq.File(), sq.Rank()

	// a pawn of side by attacks from one rank behind, relative to its direction
	pawnRank := r - 1
	if by == nchess.Black {
		pawnRank = r + 1
	}
	for _, df := range []int{-1, 1} {
		if pc, ok := at(f+df, pawnRank); ok && is(pc, nchess.Pawn) {
			return true
		}
	}
	for _, d := range knightSteps {
		if pc, ok := at(f+d[0], r+d[1]); ok && is(pc, nchess.Knight) {
			return true
		}
	}
	for _, d := range kingSteps {
		if pc, ok := at(f+d[0], r+d[1]); ok && is(pc, nchess.King) {
			return true
		}
	}
	slide := func(rays [][2]int, types ...nchess.PieceType) bool {
		for _, d := range rays {
			for step := 1; ; step++ {
				pc, ok := at(f+d[0]*step, r+d[1]*step)
				if !ok {
					break
				}
				if pc == nchess.NoPiece {
					continue
				}
				if is(pc, types...) {
					return true
				}
				break
			}
		}
		return false
	}
	return slide(rookRays, nchess.Rook, nchess.Queen) || slide(bishopRays, nchess.Bishop, nchess.Queen)
}

func (p *gamePosition) FEN() string {
	return p.game.FEN()
}

func sideFrom(c nchess.Color) Side {
	if c == nchess.Black {
		return Black
	}
	return White
}

func kindFrom(pt nchess.PieceType) Kind {
	switch pt {
	case nchess.King:
		return King
	case nchess.Queen:
		return Queen
	case nchess.Rook:
		return Rook
	case nchess.Bishop:
		return Bishop
	case nchess.Knight:
		return Knight
	case nchess.Pawn:
		return Pawn
	}
	return NoKind
}
