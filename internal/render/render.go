// Package render rasterises a match snapshot into the game window's frame.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"
	"time"

	"golang.org/x/image/font/basicfont"

	"github.com/park285/cheese-board/internal/assets"
	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/msgcat"
)

var (
	backgroundColor   = color.RGBA{255, 255, 255, 255}
	lightSquare       = color.RGBA{240, 217, 181, 255}
	darkSquare        = color.RGBA{181, 136, 99, 255}
	selectedBorder    = color.RGBA{124, 252, 0, 255}
	destinationFill   = color.NRGBA{R: 102, G: 255, B: 255, A: 128}
	whiteLastMoveFill = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackLastMoveLine = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	textColor         = color.RGBA{0, 0, 0, 255}
	statusColor       = color.RGBA{255, 0, 0, 255}
	helpShade         = color.NRGBA{0, 0, 0, 200}
	helpTextColor     = color.RGBA{255, 255, 255, 255}
	noticePanelColor  = color.NRGBA{R: 28, G: 31, B: 46, A: 230}
)

const selectedBorderWidth = 3

// Layout places an 8x8 board inside the window.
type Layout struct {
	Width, Height int
	Square        int
	Origin        image.Point
}

// DefaultLayout centres a 400px board in an 800x600 window.
func DefaultLayout() Layout { return CenteredLayout(800, 600, 50) }

func CenteredLayout(width, height, square int) Layout {
	board := square * 8
	return Layout{
		Width:  width,
		Height: height,
		Square: square,
		Origin: image.Pt((width-board)/2, (height-board)/2),
	}
}

func (l Layout) BoardRect() image.Rectangle {
	return image.Rect(l.Origin.X, l.Origin.Y, l.Origin.X+8*l.Square, l.Origin.Y+8*l.Square)
}

// SquareRect returns the screen rectangle of sq; rank 8 is at the top.
func (l Layout) SquareRect(sq match.Square) image.Rectangle {
	x := l.Origin.X + sq.File()*l.Square
	y := l.Origin.Y + (7-sq.Rank())*l.Square
	return image.Rect(x, y, x+l.Square, y+l.Square)
}

// SquareAt maps a window coordinate to a board square.
func (l Layout) SquareAt(x, y int) (match.Square, bool) {
	if !image.Pt(x, y).In(l.BoardRect()) {
		return match.NoSquare, false
	}
	file := (x - l.Origin.X) / l.Square
	rank := 7 - (y-l.Origin.Y)/l.Square
	return match.SquareAt(file, rank), true
}

// Overlay carries frontend state that is not part of the match.
type Overlay struct {
	ShowHelp   bool
	AIEnabled  bool
	AIThinking bool
	Notice     string
}

type Renderer struct {
	layout Layout
	pieces *assets.Pieces
	msgs   *msgcat.Catalog
	text   textWriter
	small  textWriter
}

// New builds a renderer. pieces must match layout.Square; msgs may be nil.
func New(layout Layout, pieces *assets.Pieces, msgs *msgcat.Catalog) (*Renderer, error) {
	if pieces == nil {
		return nil, fmt.Errorf("render: nil piece table")
	}
	if pieces.Size() != layout.Square {
		return nil, fmt.Errorf("render: piece size %d does not match square %d", pieces.Size(), layout.Square)
	}
	face := basicfont.Face7x13
	return &Renderer{
		layout: layout,
		pieces: pieces,
		msgs:   msgs,
		text:   textWriter{face: face, scale: 2},
		small:  textWriter{face: face, scale: 1},
	}, nil
}

func (r *Renderer) Layout() Layout { return r.layout }

// Frame renders a fresh image of the whole window.
func (r *Renderer) Frame(s match.Snapshot, ov Overlay) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.layout.Width, r.layout.Height))
	r.Draw(img, s, ov)
	return img
}

// Draw paints into dst, which must cover the layout's window.
func (r *Renderer) Draw(dst *image.RGBA, s match.Snapshot, ov Overlay) {
	fillRect(dst, dst.Bounds(), backgroundColor, imagedraw.Src)
	r.drawSquares(dst, s)
	r.drawLastMove(dst, s)
	r.drawPieces(dst, s)
	r.drawCoordinates(dst)
	r.drawHUD(dst, s, ov)
	if ov.ShowHelp {
		r.drawHelp(dst)
	}
}

// PNG encodes the board frame without the help overlay.
func (r *Renderer) PNG(s match.Snapshot, ov Overlay) ([]byte, error) {
	ov.ShowHelp = false
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Frame(s, ov)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func squareColor(sq match.Square) color.Color {
	if (sq.File()+sq.Rank())%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func (r *Renderer) drawSquares(dst *image.RGBA, s match.Snapshot) {
	dests := make(map[match.Square]bool, len(s.Destinations))
	for _, d := range s.Destinations {
		dests[d] = true
	}
	for sq := match.Square(0); sq < 64; sq++ {
		rect := r.layout.SquareRect(sq)
		fillRect(dst, rect, squareColor(sq), imagedraw.Src)
		if sq == s.Selected {
			strokeRect(dst, rect, selectedBorderWidth, selectedBorder)
		}
		if dests[sq] {
			fillRect(dst, rect, destinationFill, imagedraw.Over)
		}
	}
}

// White's last move tints both squares; Black's is drawn as an arrow.
func (r *Renderer) drawLastMove(dst *image.RGBA, s match.Snapshot) {
	if !s.HasLastMove {
		return
	}
	from, to := r.layout.SquareRect(s.LastMove.From), r.layout.SquareRect(s.LastMove.To)
	if mover := s.Board[s.LastMove.To]; !mover.Empty() && mover.Side == match.White {
		fillRect(dst, from, whiteLastMoveFill, imagedraw.Over)
		fillRect(dst, to, whiteLastMoveFill, imagedraw.Over)
		return
	}
	drawArrow(dst, from, to, blackLastMoveLine)
}

func (r *Renderer) drawPieces(dst *image.RGBA, s match.Snapshot) {
	for sq := match.Square(0); sq < 64; sq++ {
		img := r.pieces.Image(s.Board[sq])
		if img == nil {
			continue
		}
		rect := r.layout.SquareRect(sq)
		imagedraw.Draw(dst, rect, img, img.Bounds().Min, imagedraw.Over)
	}
}

func (r *Renderer) drawCoordinates(dst *image.RGBA) {
	board := r.layout.BoardRect()
	lh := r.small.lineHeight()
	for i := 0; i < 8; i++ {
		rank := fmt.Sprintf("%d", 8-i)
		r.small.draw(dst, rank, image.Pt(board.Min.X-20, board.Min.Y+i*r.layout.Square+(r.layout.Square-lh)/2), textColor)
		file := string(rune('a' + i))
		r.small.drawCentered(dst, file, board.Min.X+i*r.layout.Square, r.layout.Square, board.Max.Y+10, textColor)
	}
}

// FormatClock renders a duration as MM:SS, rounding down.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func sideLabel(s match.Side) string {
	if s == match.White {
		return "White"
	}
	return "Black"
}

// StatusLine is the red banner text, empty while play continues without check.
func (r *Renderer) StatusLine(s match.Snapshot) string {
	switch s.Status {
	case match.Checkmate, match.Timeout:
		w := sideLabel(s.Winner)
		return r.msgs.Text("hud.win", map[string]string{"Winner": w}, "Game Over - "+w+" wins!")
	case match.Stalemate:
		return r.msgs.Text("hud.draw", nil, "Game Over - Draw")
	case match.Draw:
		if s.Reason == "" {
			return r.msgs.Text("hud.draw", nil, "Game Over - Draw")
		}
		return r.msgs.Text("hud.draw_reason", map[string]string{"Reason": s.Reason}, "Game Over - Draw")
	}
	if s.InCheck {
		return r.msgs.Text("hud.check", nil, "CHECK!")
	}
	return ""
}

func (r *Renderer) drawHUD(dst *image.RGBA, s match.Snapshot, ov Overlay) {
	w, h := r.layout.Width, r.layout.Height

	for i, side := range []match.Side{match.White, match.Black} {
		label := sideLabel(side)
		clock := FormatClock(s.Remaining[side])
		line := r.msgs.Text("hud.clock", map[string]string{"Side": label, "Time": clock}, label+": "+clock)
		r.text.draw(dst, line, image.Pt(20, 20+i*30), textColor)
	}

	turn := sideLabel(s.Turn)
	r.text.draw(dst, r.msgs.Text("hud.turn", map[string]string{"Side": turn}, "Current Player: "+turn), image.Pt(w-250, 20), textColor)
	state := "OFF"
	if ov.AIEnabled {
		state = "ON"
	}
	r.text.draw(dst, r.msgs.Text("hud.ai", map[string]string{"State": state}, "AI: "+state), image.Pt(w-250, 50), textColor)
	if ov.AIThinking {
		r.small.draw(dst, r.msgs.Text("hud.thinking", nil, "AI thinking..."), image.Pt(w-250, 80), textColor)
	}

	if status := r.StatusLine(s); status != "" {
		r.text.drawCentered(dst, status, 0, w, h-50, statusColor)
	}

	r.small.draw(dst, r.msgs.Text("hud.help_hint", nil, "Press H for help"), image.Pt(w-150, h-30), textColor)
	if s.Name != "" {
		r.small.draw(dst, r.msgs.Text("hud.match", map[string]string{"Name": s.Name}, s.Name), image.Pt(20, h-30), textColor)
	}

	if notice := strings.TrimSpace(ov.Notice); notice != "" {
		width := r.small.measure(notice) + 24
		rect := image.Rect((w-width)/2, 20, (w+width)/2, 20+r.small.lineHeight()+12)
		drawRoundedPanel(dst, rect, 8, noticePanelColor)
		r.small.drawCentered(dst, notice, rect.Min.X, rect.Dx(), rect.Min.Y+6, helpTextColor)
	}
}

var helpKeys = []struct{ key, fallback string }{
	{"help.line1", "Click on a piece to select it"},
	{"help.line2", "Click on a highlighted square to move"},
	{"help.line3", "R: Reset the game"},
	{"help.line4", "H: Toggle this help screen"},
	{"help.line5", "A: Toggle AI opponent"},
	{"help.line6", "S: Save a board snapshot"},
	{"help.line7", "Q: Quit the game"},
}

func (r *Renderer) drawHelp(dst *image.RGBA) {
	w, h := r.layout.Width, r.layout.Height
	fillRect(dst, dst.Bounds(), helpShade, imagedraw.Over)
	r.text.drawCentered(dst, r.msgs.Text("help.title", nil, "CHESS GAME HELP"), 0, w, 100, helpTextColor)
	y := 150
	for _, item := range helpKeys {
		r.small.drawCentered(dst, r.msgs.Text(item.key, nil, item.fallback), 0, w, y, helpTextColor)
		y += 30
	}
	r.small.drawCentered(dst, r.msgs.Text("help.exit", nil, "Press H to return to the game"), 0, w, h-100, helpTextColor)
}
