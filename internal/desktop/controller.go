// Package desktop sequences input, the AI responder and the match for the
// game window. It holds no window-system code so it can run headless.
package desktop

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/ai"
	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/render"
)

type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionToggleHelp
	ActionToggleAI
	ActionSnapshot
)

const noticeTTL = 3 * time.Second

// Sink plays cues. Implementations must not block.
type Sink interface {
	Play(cue match.Cue)
}

type nopSink struct{}

func (nopSink) Play(match.Cue) {}

type Options struct {
	AIEnabled   bool
	AISide      match.Side
	SnapshotDir string
	Messages    *msgcat.Catalog
	Sink        Sink
	Logger      *zap.Logger
}

// Controller is driven once per frame from the window loop and is not safe
// for concurrent use.
type Controller struct {
	match     *match.Match
	responder *ai.Responder
	renderer  *render.Renderer
	msgs      *msgcat.Catalog
	sink      Sink
	logger    *zap.Logger

	aiEnabled   bool
	aiSide      match.Side
	showHelp    bool
	snapshotDir string

	notice      string
	noticeUntil time.Time
	lastNow     time.Time

	frame    *image.RGBA
	frameKey frameKey
	hasFrame bool
}

type frameKey struct {
	version    uint64
	generation uint64
	seconds    [match.SideCount]int64
	showHelp   bool
	aiEnabled  bool
	aiPending  bool
	notice     string
}

func NewController(m *match.Match, responder *ai.Responder, renderer *render.Renderer, opts Options) *Controller {
	c := &Controller{
		match:       m,
		responder:   responder,
		renderer:    renderer,
		msgs:        opts.Messages,
		sink:        opts.Sink,
		logger:      opts.Logger,
		aiEnabled:   opts.AIEnabled,
		aiSide:      opts.AISide,
		snapshotDir: opts.SnapshotDir,
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Controller) AIEnabled() bool { return c.aiEnabled }
func (c *Controller) HelpShown() bool { return c.showHelp }
func (c *Controller) Notice() string  { return c.notice }

// Handle applies a key action and reports whether the program should exit.
func (c *Controller) Handle(a Action) (quit bool) {
	switch a {
	case ActionQuit:
		c.logger.Info("quit_requested", zap.String("match_id", c.match.ID()))
		c.responder.Cancel()
		return true
	case ActionReset:
		c.responder.Cancel()
		out := c.match.Reset()
		c.notice = ""
		c.play(out.Cues)
		c.logger.Info("match_reset", zap.String("match_id", c.match.ID()))
	case ActionToggleHelp:
		c.showHelp = !c.showHelp
	case ActionToggleAI:
		c.aiEnabled = !c.aiEnabled
		if !c.aiEnabled {
			c.responder.Cancel()
		}
		c.logger.Info("ai_toggled", zap.Bool("enabled", c.aiEnabled), zap.Stringer("side", c.aiSide))
	case ActionSnapshot:
		path, err := c.saveSnapshot()
		if err != nil {
			c.logger.Warn("snapshot_failed", zap.Error(err))
			c.setNotice(c.msgs.Text("snapshot.failed", nil, "Snapshot failed"))
			break
		}
		c.logger.Info("snapshot_saved", zap.String("path", path))
		c.setNotice(c.msgs.Text("snapshot.saved", map[string]string{"Path": path}, "Snapshot saved: "+path))
	}
	return false
}

// Click handles a left click at window coordinates.
func (c *Controller) Click(x, y int) {
	if c.showHelp || c.humanBlocked() {
		return
	}
	sq, ok := c.renderer.Layout().SquareAt(x, y)
	if !ok {
		sq = match.NoSquare
	}
	out := c.match.Click(sq)
	if out.Moved {
		c.logger.Debug("human_move", zap.String("match_id", c.match.ID()), zap.String("move_uci", out.Move.UCI()), zap.Stringer("side", out.Mover))
	}
	c.play(out.Cues)
}

// humanBlocked is true while the AI owns the move.
func (c *Controller) humanBlocked() bool {
	if c.responder.Pending() {
		return true
	}
	return c.aiEnabled && c.match.Turn() == c.aiSide
}

// Update runs one frame: deliver the AI result, charge the clock, start the AI.
func (c *Controller) Update(now time.Time) {
	c.lastNow = now
	if res, ok := c.responder.Poll(); ok {
		out, applied := c.match.ApplyAt(res.Generation, res.Move)
		if applied {
			c.logger.Debug("ai_move", zap.String("match_id", c.match.ID()), zap.String("move_uci", res.Move.UCI()), zap.String("source", res.Source))
			c.play(out.Cues)
		} else {
			c.logger.Debug("ai_move_dropped", zap.String("move_uci", res.Move.UCI()), zap.Uint64("generation", res.Generation))
		}
	}

	c.play(c.match.Tick(now).Cues)

	if c.notice != "" && now.After(c.noticeUntil) {
		c.notice = ""
	}
	c.maybeStartAI()
}

func (c *Controller) maybeStartAI() {
	if !c.aiEnabled || c.responder.Pending() {
		return
	}
	if c.match.Status().Terminal() || c.match.Turn() != c.aiSide {
		return
	}
	c.match.ClearSelection()
	c.responder.Start(ai.Request{
		Generation: c.match.Generation(),
		Side:       c.aiSide,
		FEN:        c.match.FEN(),
		Legal:      c.match.LegalMoves(),
	})
}

func (c *Controller) overlay() render.Overlay {
	return render.Overlay{
		ShowHelp:   c.showHelp,
		AIEnabled:  c.aiEnabled,
		AIThinking: c.responder.Pending(),
		Notice:     c.notice,
	}
}

// Frame returns the current window image and whether it changed since the last call.
func (c *Controller) Frame() (*image.RGBA, bool) {
	snap := c.match.Snapshot()
	ov := c.overlay()
	key := frameKey{
		version:    snap.Version,
		generation: snap.Generation,
		showHelp:   ov.ShowHelp,
		aiEnabled:  ov.AIEnabled,
		aiPending:  ov.AIThinking,
		notice:     ov.Notice,
	}
	for i := range key.seconds {
		key.seconds[i] = int64(snap.Remaining[i] / time.Second)
	}
	if c.hasFrame && key == c.frameKey {
		return c.frame, false
	}
	if c.frame == nil {
		layout := c.renderer.Layout()
		c.frame = image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	}
	c.renderer.Draw(c.frame, snap, ov)
	c.frameKey = key
	c.hasFrame = true
	return c.frame, true
}

func (c *Controller) saveSnapshot() (string, error) {
	raw, err := c.renderer.PNG(c.match.Snapshot(), c.overlay())
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(c.snapshotDir)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	name := fmt.Sprintf("board-%s-%s.png", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

func (c *Controller) setNotice(msg string) {
	c.notice = msg
	base := c.lastNow
	if base.IsZero() {
		base = time.Now()
	}
	c.noticeUntil = base.Add(noticeTTL)
}

func (c *Controller) play(cues []match.Cue) {
	for _, cue := range cues {
		c.sink.Play(cue)
	}
}

// Close stops the AI worker.
func (c *Controller) Close() { c.responder.Close() }
