package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/cheese-board/internal/match"
)

func TestLoadPiecesFallsBackToPlaceholders(t *testing.T) {
	p, err := LoadPieces(t.TempDir(), 50, nil)
	if err != nil {
		t.Fatalf("LoadPieces: %v", err)
	}
	for side := match.White; int(side) < match.SideCount; side++ {
		for kind := match.King; kind <= match.Pawn; kind++ {
			img := p.Image(match.Piece{Side: side, Kind: kind})
			if img == nil {
				t.Fatalf("%s missing", PieceFileBase(side, kind))
			}
			if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
				t.Fatalf("%s bounds %v", PieceFileBase(side, kind), img.Bounds())
			}
			// disc centre carries the side colour
			r, _, _, a := img.At(50/2, 50/2+8).RGBA()
			if a == 0 {
				t.Fatalf("%s centre transparent", PieceFileBase(side, kind))
			}
			if side == match.White && r>>8 < 128 && kind == match.Pawn {
				t.Fatalf("white pawn body dark")
			}
		}
	}
	if p.Image(match.Piece{}) != nil {
		t.Fatalf("empty piece has image")
	}
	// corners are outside the disc
	if _, _, _, a := p.Image(match.Piece{Side: match.White, Kind: match.King}).At(0, 0).RGBA(); a != 0 {
		t.Fatalf("corner not transparent")
	}
}

func TestLoadPiecesPrefersFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pieces"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" style="fill: #ff0000"/></svg>`
	if err := os.WriteFile(filepath.Join(dir, "pieces", "wQ.svg"), []byte(svg), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pieces", "bN.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := LoadPieces(dir, 20, nil)
	if err != nil {
		t.Fatalf("LoadPieces: %v", err)
	}

	r, g, b, _ := p.Image(match.Piece{Side: match.White, Kind: match.Queen}).At(10, 10).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Fatalf("svg queen pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = p.Image(match.Piece{Side: match.Black, Kind: match.Knight}).At(10, 10).RGBA()
	if r != 0 || g != 0 || b>>8 != 255 {
		t.Fatalf("png knight pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestPieceFileBase(t *testing.T) {
	if got := PieceFileBase(match.White, match.King); got != "wK" {
		t.Fatalf("got %q", got)
	}
	if got := PieceFileBase(match.Black, match.Knight); got != "bN" {
		t.Fatalf("got %q", got)
	}
}

func TestSineWAVHeader(t *testing.T) {
	wav := SineWAV(ToneFor(match.CueSelect), ToneSampleRate)
	samples := int(0.2 * ToneSampleRate)
	if len(wav) != 44+samples*2 {
		t.Fatalf("len = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("bad header")
	}
	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != 1 {
		t.Fatalf("channels = %d", ch)
	}
	if sr := binary.LittleEndian.Uint32(wav[24:28]); sr != ToneSampleRate {
		t.Fatalf("rate = %d", sr)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Fatalf("bits = %d", bits)
	}
	if n := binary.LittleEndian.Uint32(wav[40:44]); int(n) != samples*2 {
		t.Fatalf("data len = %d", n)
	}
}

func TestLoadSoundsUsesFilesAndFallbacks(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sounds"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := SineWAV(Tone{Freq: 1000, Volume: 0.1, Duration: 10e6}, 8000)
	if err := os.WriteFile(filepath.Join(dir, "sounds", "move.wav"), custom, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sounds", "check.wav"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := LoadSounds(dir, nil)
	if !bytes.Equal(s.WAV(match.CueMove), custom) {
		t.Fatalf("move.wav not used")
	}
	if !bytes.Equal(s.WAV(match.CueCheck), SineWAV(ToneFor(match.CueCheck), ToneSampleRate)) {
		t.Fatalf("invalid check.wav not replaced")
	}
	for _, cue := range match.Cues {
		if len(s.WAV(cue)) <= 44 {
			t.Fatalf("cue %s empty", cue)
		}
	}
}
