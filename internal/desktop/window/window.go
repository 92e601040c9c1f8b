// Package window binds the desktop controller to an ebiten window.
package window

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/desktop"
)

// TPS is the frame rate the loop runs at.
const TPS = 60

var keyActions = []struct {
	key    ebiten.Key
	action desktop.Action
}{
	{ebiten.KeyQ, desktop.ActionQuit},
	{ebiten.KeyR, desktop.ActionReset},
	{ebiten.KeyH, desktop.ActionToggleHelp},
	{ebiten.KeyA, desktop.ActionToggleAI},
	{ebiten.KeyS, desktop.ActionSnapshot},
}

// Game implements ebiten.Game.
type Game struct {
	ctrl          *desktop.Controller
	width, height int
	screen        *ebiten.Image
	logger        *zap.Logger
}

func NewGame(ctrl *desktop.Controller, width, height int, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{ctrl: ctrl, width: width, height: height, logger: logger}
}

func (g *Game) Update() error {
	for _, ka := range keyActions {
		if inpututil.IsKeyJustPressed(ka.key) && g.ctrl.Handle(ka.action) {
			return ebiten.Termination
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.ctrl.Click(x, y)
	}
	g.ctrl.Update(time.Now())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame, changed := g.ctrl.Frame()
	if g.screen == nil {
		g.screen = ebiten.NewImage(g.width, g.height)
		changed = true
	}
	if changed {
		g.screen.WritePixels(frame.Pix)
	}
	screen.DrawImage(g.screen, nil)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until the player quits or closes it.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(TPS)
	g.logger.Info("window_open", zap.Int("width", g.width), zap.Int("height", g.height))
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
