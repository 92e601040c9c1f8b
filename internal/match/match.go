package match

import (
	"fmt"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*Match)

// WithClock overrides the per-side budget. Non-positive values are ignored.
func WithClock(d time.Duration) Option {
	return func(m *Match) {
		if d > 0 {
			m.initialClock = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStartFEN starts (and resets) the match from fen instead of the standard position.
func WithStartFEN(fen string) Option {
	return func(m *Match) { m.startFEN = fen }
}

// Outcome reports what a single operation changed.
type Outcome struct {
	Moved  bool
	Move   Move
	Mover  Side
	Event  Event
	Status Status
	Cues   []Cue
}

// Snapshot is a copy of the match state, safe to hand to other goroutines.
type Snapshot struct {
	ID           string
	Name         string
	Board        [64]Piece
	Turn         Side
	Status       Status
	Winner       Side
	HasWinner    bool
	Reason       string
	InCheck      bool
	Remaining    [SideCount]time.Duration
	Started      bool
	Selected     Square
	Destinations []Square
	LastMove     Move
	HasLastMove  bool
	FEN          string
	Version      uint64
	Generation   uint64
}

// Match owns one position, its clocks and the pending selection.
// All methods are safe for concurrent use.
type Match struct {
	mu sync.Mutex

	rules        Rules
	logger       *zap.Logger
	initialClock time.Duration
	startFEN     string

	pos       Position
	clock     *Clock
	sel       *Selector
	status    Status
	winner    Side
	hasWinner bool
	reason    string
	started   bool
	lastMove  Move
	hasLast   bool

	id         string
	name       string
	version    uint64
	generation uint64
}

func New(rules Rules, opts ...Option) (*Match, error) {
	if rules == nil {
		rules = StandardRules{}
	}
	m := &Match{
		rules:        rules,
		logger:       zap.NewNop(),
		initialClock: DefaultClock,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.startFEN != "" {
		if _, err := rules.FromFEN(m.startFEN); err != nil {
			return nil, fmt.Errorf("start position: %w", err)
		}
	}
	m.clock = NewClock(m.initialClock)
	m.sel = NewSelector()
	m.resetLocked()
	return m, nil
}

func (m *Match) resetLocked() {
	if m.startFEN != "" {
		pos, err := m.rules.FromFEN(m.startFEN)
		if err != nil {
			// validated in New
			panic(err)
		}
		m.pos = pos
	} else {
		m.pos = m.rules.NewPosition()
	}
	m.clock.Reset()
	m.sel.Clear()
	m.status = InProgress
	m.winner = White
	m.hasWinner = false
	m.reason = ""
	m.started = false
	m.lastMove = Move{}
	m.hasLast = false
	m.id = uuid.NewString()
	m.name = petname.Generate(2, "-")
	m.generation++
	m.version++
}

// Reset restores the initial state. Position, clocks, selection and the
// started flag are replaced together.
func (m *Match) Reset() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.id
	m.resetLocked()
	m.logger.Info("match_reset", zap.String("previous_match_id", prev), zap.String("match_id", m.id), zap.String("match_name", m.name))
	return Outcome{Status: m.status, Cues: []Cue{CueSelect}}
}

// Click feeds one board pick to the selector and applies the resulting move.
// Picks are ignored once the match is over.
func (m *Match) Click(sq Square) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.Terminal() {
		return Outcome{Status: m.status}
	}
	mv, ok, selected := m.sel.Select(m.pos, sq)
	m.version++
	if selected {
		return Outcome{Status: m.status, Cues: []Cue{CueSelect}}
	}
	if !ok {
		return Outcome{Status: m.status}
	}
	out, _ := m.applyLocked(mv)
	return out
}

// ClearSelection drops any pending pick.
func (m *Match) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sel.Active() {
		m.sel.Clear()
		m.version++
	}
}

// Apply plays mv against the current position. It is a no-op when the match
// is over or mv is not legal right now.
func (m *Match) Apply(mv Move) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(mv)
}

// ApplyAt is Apply guarded by a generation token from Generation; moves
// computed before a reset are dropped.
func (m *Match) ApplyAt(generation uint64, mv Move) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		m.logger.Debug("stale_move_dropped", zap.String("match_id", m.id), zap.String("move_uci", mv.UCI()), zap.Uint64("generation", generation), zap.Uint64("current_generation", m.generation))
		return Outcome{Status: m.status}, false
	}
	return m.applyLocked(mv)
}

func (m *Match) applyLocked(mv Move) (Outcome, bool) {
	if m.status.Terminal() {
		return Outcome{Status: m.status}, false
	}
	mover := m.pos.Turn()
	event, err := m.pos.Apply(mv)
	if err != nil {
		m.logger.Debug("move_rejected", zap.String("match_id", m.id), zap.String("move_uci", mv.UCI()), zap.Error(err))
		return Outcome{Status: m.status}, false
	}
	m.sel.Clear()
	m.started = true
	m.lastMove = mv
	m.hasLast = true
	m.version++

	out := Outcome{Moved: true, Move: mv, Mover: mover, Event: event, Cues: []Cue{event.Cue()}}

	status, reason := m.pos.Terminal()
	switch status {
	case Checkmate:
		m.status = Checkmate
		m.winner = mover
		m.hasWinner = true
		out.Cues = append(out.Cues, CueCheckmate)
	case Stalemate, Draw:
		m.status = status
		m.reason = reason
		out.Cues = append(out.Cues, CueStalemate)
	}
	out.Status = m.status

	fields := []zap.Field{
		zap.String("match_id", m.id),
		zap.String("move_uci", mv.UCI()),
		zap.Stringer("side", mover),
		zap.Stringer("status", m.status),
	}
	if m.status.Terminal() {
		m.logger.Info("match_finished", append(fields, zap.String("reason", m.reason))...)
	} else {
		m.logger.Debug("move_applied", fields...)
	}
	return out, true
}

// Tick charges elapsed wall-clock time to the side to move. It does nothing
// before the first move or after the match is over.
func (m *Match) Tick(now time.Time) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.status.Terminal() {
		return Outcome{Status: m.status}
	}
	side := m.pos.Turn()
	if !m.clock.Tick(side, now) {
		return Outcome{Status: m.status}
	}
	m.status = Timeout
	m.winner = side.Other()
	m.hasWinner = true
	m.sel.Clear()
	m.version++
	m.logger.Info("match_finished", zap.String("match_id", m.id), zap.Stringer("status", m.status), zap.Stringer("side", side))
	return Outcome{Status: m.status, Cues: []Cue{CueTimeout}}
}

func (m *Match) Turn() Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos.Turn()
}

func (m *Match) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Winner reports the winning side for Checkmate and Timeout.
func (m *Match) Winner() (Side, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner, m.hasWinner
}

func (m *Match) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *Match) FEN() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos.FEN()
}

func (m *Match) LegalMoves() []Move {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos.LegalMoves()
}

func (m *Match) Remaining(side Side) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock.Remaining(side)
}

// Generation changes on every reset.
func (m *Match) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *Match) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		ID:          m.id,
		Name:        m.name,
		Turn:        m.pos.Turn(),
		Status:      m.status,
		Winner:      m.winner,
		HasWinner:   m.hasWinner,
		Reason:      m.reason,
		InCheck:     m.pos.InCheck(),
		Started:     m.started,
		Selected:    m.sel.Source(),
		LastMove:    m.lastMove,
		HasLastMove: m.hasLast,
		FEN:         m.pos.FEN(),
		Version:     m.version,
		Generation:  m.generation,
	}
	s.Remaining[White] = m.clock.Remaining(White)
	s.Remaining[Black] = m.clock.Remaining(Black)
	s.Destinations = m.sel.Destinations()
	for sq := Square(0); sq < 64; sq++ {
		if pc, ok := m.pos.PieceAt(sq); ok {
			s.Board[sq] = pc
		}
	}
	return s
}
