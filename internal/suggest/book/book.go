// Package book answers suggestions from a Polyglot opening book.
package book

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	chesslib "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/suggest"
)

// Book is safe for concurrent use; the loaded table is read-only.
type Book struct {
	book      *chesslib.PolyglotBook
	minWeight uint16
	logger    *zap.Logger
}

type Option func(*Book)

// WithMinWeight ignores entries lighter than w.
func WithMinWeight(w uint16) Option {
	return func(b *Book) { b.minWeight = w }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// Open loads a .bin Polyglot book from path.
func Open(path string, opts ...Option) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", path, err)
	}
	defer file.Close()

	pb, err := chesslib.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book %q: %w", path, err)
	}
	b := &Book{book: pb, minWeight: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type candidate struct {
	move   string
	weight uint16
}

func (b *Book) Suggest(ctx context.Context, fen string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return "", err
	}

	hashStr, err := chesslib.NewZobristHasher().HashPosition(game.FEN())
	if err != nil {
		return "", fmt.Errorf("compute polyglot hash: %w", err)
	}
	entries := b.book.FindMoves(chesslib.ZobristHashToUint64(hashStr))

	cands := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.Weight < b.minWeight {
			continue
		}
		mv := chesslib.DecodeMove(entry.Move).ToMove()
		cands = append(cands, candidate{move: mv.String(), weight: entry.Weight})
	}

	for _, c := range rank(cands) {
		uci := normalizeCastling(game, c.move)
		verify, err := gameFromFEN(fen)
		if err != nil {
			return "", err
		}
		if err := verify.PushNotationMove(uci, chesslib.UCINotation{}, nil); err != nil {
			b.logger.Debug("book_move_invalid", zap.String("move_uci", uci), zap.Error(err))
			continue
		}
		b.logger.Debug("book_hit", zap.String("move_uci", uci), zap.Uint16("weight", c.weight))
		return uci, nil
	}
	return "", fmt.Errorf("book: %w", suggest.ErrNoSuggestion)
}

// rank orders candidates by weight, heaviest first, ties by move text.
func rank(cands []candidate) []candidate {
	out := append([]candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].weight == out[j].weight {
			return out[i].move < out[j].move
		}
		return out[i].weight > out[j].weight
	})
	return out
}

// Polyglot encodes castling as the king capturing its own rook.
var castlingMoves = map[string]string{
	"e1h1": "e1g1",
	"e1a1": "e1c1",
	"e8h8": "e8g8",
	"e8a8": "e8c8",
}

func normalizeCastling(game *chesslib.Game, move string) string {
	std, ok := castlingMoves[move]
	if !ok {
		return move
	}
	from, err := squareFromString(move[:2])
	if err != nil {
		return move
	}
	if game.Position().Board().Piece(from).Type() != chesslib.King {
		return move
	}
	return std
}

func squareFromString(s string) (chesslib.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chesslib.NoSquare, fmt.Errorf("bad square %q", s)
	}
	return chesslib.Square(int(s[1]-'1')*8 + int(s[0]-'a')), nil
}

func gameFromFEN(fen string) (*chesslib.Game, error) {
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		return chesslib.NewGame(), nil
	}
	option, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return chesslib.NewGame(option), nil
}
