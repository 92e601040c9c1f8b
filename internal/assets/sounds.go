package assets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/match"
)

const ToneSampleRate = 44100

// Tone is a plain sine burst.
type Tone struct {
	Freq     float64
	Volume   float64
	Duration time.Duration
}

var tones = map[match.Cue]Tone{
	match.CueMove:      {Freq: 440, Volume: 0.5, Duration: 500 * time.Millisecond},
	match.CueCapture:   {Freq: 330, Volume: 0.7, Duration: 500 * time.Millisecond},
	match.CueCheck:     {Freq: 660, Volume: 0.8, Duration: 500 * time.Millisecond},
	match.CueCheckmate: {Freq: 880, Volume: 1.0, Duration: time.Second},
	match.CueStalemate: {Freq: 220, Volume: 0.6, Duration: time.Second},
	match.CueSelect:    {Freq: 550, Volume: 0.4, Duration: 200 * time.Millisecond},
	match.CueTimeout:   {Freq: 110, Volume: 0.9, Duration: time.Second},
}

// ToneFor returns the synthesised fallback for cue.
func ToneFor(cue match.Cue) Tone {
	if t, ok := tones[cue]; ok {
		return t
	}
	return tones[match.CueMove]
}

// Sounds holds one WAV file image per cue.
type Sounds struct {
	clips map[match.Cue][]byte
}

// LoadSounds reads <dir>/sounds/<cue>.wav for every cue, synthesising missing ones.
func LoadSounds(dir string, logger *zap.Logger) *Sounds {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sounds{clips: make(map[match.Cue][]byte, len(match.Cues))}
	for _, cue := range match.Cues {
		data, err := readSound(dir, cue)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("sound_asset_invalid", zap.String("cue", string(cue)), zap.Error(err))
			}
			data = SineWAV(ToneFor(cue), ToneSampleRate)
		}
		s.clips[cue] = data
	}
	return s
}

func readSound(dir string, cue match.Cue) ([]byte, error) {
	if dir == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(filepath.Join(dir, "sounds", string(cue)+".wav"))
	if err != nil {
		return nil, err
	}
	if len(data) < 44 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return data, nil
}

// WAV returns the raw file bytes for cue, or nil for an unknown cue.
func (s *Sounds) WAV(cue match.Cue) []byte { return s.clips[cue] }

// SineWAV encodes t as a mono 16-bit PCM WAV file.
func SineWAV(t Tone, sampleRate int) []byte {
	n := int(float64(sampleRate) * t.Duration.Seconds())
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataLen := n * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	samples := make([]int16, n)
	for i := range samples {
		v := math.Sin(2*math.Pi*float64(i)*t.Freq/float64(sampleRate)) * t.Volume * 32767
		samples[i] = int16(v)
	}
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
