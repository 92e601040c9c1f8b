// Package assets loads piece images and sound effects, synthesising
// replacements for anything missing on disk.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/park285/cheese-board/internal/match"
)

// Pieces is the image table indexed by [side][kind]. Row NoKind stays nil.
type Pieces struct {
	size   int
	images [match.SideCount][match.KindCount]image.Image
}

// PieceFileBase is the file stem for a piece, e.g. "wK" or "bN".
func PieceFileBase(side match.Side, kind match.Kind) string {
	prefix := "w"
	if side == match.Black {
		prefix = "b"
	}
	return prefix + kind.Letter()
}

// LoadPieces reads <dir>/pieces/<stem>.svg, then <stem>.png, and otherwise
// rasterises a generated placeholder. Only a placeholder failure is an error.
func LoadPieces(dir string, size int, logger *zap.Logger) (*Pieces, error) {
	if size <= 0 {
		return nil, fmt.Errorf("piece size must be > 0: %d", size)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pieces{size: size}
	for side := match.White; int(side) < match.SideCount; side++ {
		for kind := match.King; kind <= match.Pawn; kind++ {
			img, err := loadPieceFile(dir, side, kind, size)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					logger.Warn("piece_asset_invalid", zap.String("piece", PieceFileBase(side, kind)), zap.Error(err))
				}
				img, err = rasterizeSVG(placeholderSVG(side, kind), size)
				if err != nil {
					return nil, fmt.Errorf("placeholder %s: %w", PieceFileBase(side, kind), err)
				}
			}
			p.images[side][kind] = img
		}
	}
	return p, nil
}

func loadPieceFile(dir string, side match.Side, kind match.Kind, size int) (image.Image, error) {
	if dir == "" {
		return nil, os.ErrNotExist
	}
	stem := filepath.Join(dir, "pieces", PieceFileBase(side, kind))
	if data, err := os.ReadFile(stem + ".svg"); err == nil {
		return rasterizeSVG(data, size)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.Open(stem + ".png")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s.png: %w", stem, err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}

func (p *Pieces) Size() int { return p.size }

// Image returns nil for an empty square.
func (p *Pieces) Image(pc match.Piece) image.Image {
	if pc.Empty() || int(pc.Side) >= match.SideCount || int(pc.Kind) >= match.KindCount {
		return nil
	}
	return p.images[pc.Side][pc.Kind]
}
