package match

import (
	"fmt"
	"strings"
	"time"
)

// DefaultClock is the per-side budget every match starts with.
const DefaultClock = 180 * time.Second

type Side uint8

const (
	White Side = iota
	Black
)

// SideCount sizes tables indexed by Side.
const SideCount = 2

func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// ParseSide accepts "white"/"w" and "black"/"b" in any case.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown side %q", raw)
}

type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// KindCount sizes tables indexed by Kind; index NoKind stays unused.
const KindCount = int(Pawn) + 1

// Letter returns the upper-case piece letter used in asset names.
func (k Kind) Letter() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

// Piece is a (side, kind) pair. The zero value has NoKind and means an empty square.
type Piece struct {
	Side Side
	Kind Kind
}

func (p Piece) Empty() bool { return p.Kind == NoKind }

// Square is rank-major: rank*8 + file, a1 = 0, h8 = 63.
type Square int8

const NoSquare Square = -1

func SquareAt(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (s Square) Valid() bool { return s >= 0 && s <= 63 }
func (s Square) File() int   { return int(s) % 8 }
func (s Square) Rank() int   { return int(s) / 8 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare decodes algebraic coordinates such as "e4".
func ParseSquare(raw string) (Square, error) {
	if len(raw) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", raw)
	}
	file := int(raw[0]) - 'a'
	rank := int(raw[1]) - '1'
	sq := SquareAt(file, rank)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("invalid square %q", raw)
	}
	return sq, nil
}

type Move struct {
	From  Square
	To    Square
	Promo Kind
}

// UCI renders the move in long algebraic form, e.g. "e7e8q".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	switch m.Promo {
	case Queen:
		s += "q"
	case Rook:
		s += "r"
	case Bishop:
		s += "b"
	case Knight:
		s += "n"
	}
	return s
}

func (m Move) String() string { return m.UCI() }

// ParseUCI decodes a long algebraic move string. It does not check legality.
func ParseUCI(raw string) (Move, error) {
	if len(raw) != 4 && len(raw) != 5 {
		return Move{}, fmt.Errorf("invalid uci move %q", raw)
	}
	from, err := ParseSquare(raw[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid uci move %q: %w", raw, err)
	}
	to, err := ParseSquare(raw[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid uci move %q: %w", raw, err)
	}
	mv := Move{From: from, To: to}
	if len(raw) == 5 {
		switch raw[4] {
		case 'q', 'Q':
			mv.Promo = Queen
		case 'r', 'R':
			mv.Promo = Rook
		case 'b', 'B':
			mv.Promo = Bishop
		case 'n', 'N':
			mv.Promo = Knight
		default:
			return Move{}, fmt.Errorf("invalid promotion in %q", raw)
		}
	}
	return mv, nil
}

type Status uint8

const (
	InProgress Status = iota
	Checkmate
	Stalemate
	Draw
	Timeout
)

func (s Status) Terminal() bool { return s != InProgress }

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Draw:
		return "draw"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// Event classifies an accepted move. Check wins over Capture.
type Event uint8

const (
	QuietMove Event = iota
	Capture
	Check
)

// Cue names a user-visible occurrence the audio layer reacts to.
type Cue string

const (
	CueMove      Cue = "move"
	CueCapture   Cue = "capture"
	CueCheck     Cue = "check"
	CueCheckmate Cue = "checkmate"
	CueStalemate Cue = "stalemate"
	CueSelect    Cue = "select"
	CueTimeout   Cue = "timeout"
)

// Cues lists every cue in a stable order.
var Cues = []Cue{CueMove, CueCapture, CueCheck, CueCheckmate, CueStalemate, CueSelect, CueTimeout}

func (e Event) Cue() Cue {
	switch e {
	case Check:
		return CueCheck
	case Capture:
		return CueCapture
	}
	return CueMove
}
