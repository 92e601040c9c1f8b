package window

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/assets"
	"github.com/park285/cheese-board/internal/match"
)

// Audio plays decoded cue clips on an ebiten audio context.
type Audio struct {
	players map[match.Cue]*audio.Player
	logger  *zap.Logger
}

// NewAudio decodes every cue up front. Cues that fail to decode stay silent.
func NewAudio(sounds *assets.Sounds, logger *zap.Logger) *Audio {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := audio.NewContext(assets.ToneSampleRate)
	a := &Audio{players: make(map[match.Cue]*audio.Player, len(match.Cues)), logger: logger}
	for _, cue := range match.Cues {
		p, err := newPlayer(ctx, sounds.WAV(cue))
		if err != nil {
			logger.Warn("sound_decode_failed", zap.String("cue", string(cue)), zap.Error(err))
			continue
		}
		a.players[cue] = p
	}
	return a
}

func newPlayer(ctx *audio.Context, raw []byte) (*audio.Player, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty clip")
	}
	stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return ctx.NewPlayerFromBytes(pcm), nil
}

// Play restarts the cue's clip.
func (a *Audio) Play(cue match.Cue) {
	p, ok := a.players[cue]
	if !ok {
		return
	}
	if err := p.Rewind(); err != nil {
		a.logger.Debug("sound_rewind_failed", zap.String("cue", string(cue)), zap.Error(err))
		return
	}
	p.Play()
}
