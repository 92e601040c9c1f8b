package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/cheese-board/internal/match"
)

// sanitizeSVG fixes style spellings oksvg rejects.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill:000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: 000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: 000000"), []byte("stroke:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stop-color: #"), []byte("stop-color:#"))
	return fixed
}

func rasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// placeholderSVG draws a token: a filled disc with a kind-specific outline motif.
func placeholderSVG(side match.Side, kind match.Kind) []byte {
	fill, line := "#ffffff", "#000000"
	if side == match.Black {
		fill, line = "#000000", "#ffffff"
	}

	var motif string
	switch kind {
	case match.Pawn:
		motif = fmt.Sprintf(`<circle cx="50" cy="40" r="15" fill="none" stroke="%[2]s" stroke-width="2"/>
<rect x="35" y="50" width="30" height="20" fill="%[1]s" stroke="%[2]s" stroke-width="2"/>`, fill, line)
	case match.Rook:
		motif = fmt.Sprintf(`<rect x="25" y="25" width="50" height="50" fill="%[1]s" stroke="%[2]s" stroke-width="2"/>
<rect x="30" y="15" width="10" height="10" fill="none" stroke="%[2]s" stroke-width="2"/>
<rect x="45" y="15" width="10" height="10" fill="none" stroke="%[2]s" stroke-width="2"/>
<rect x="60" y="15" width="10" height="10" fill="none" stroke="%[2]s" stroke-width="2"/>`, fill, line)
	case match.Knight:
		motif = fmt.Sprintf(`<polygon points="30,20 70,30 60,70 30,60" fill="none" stroke="%[1]s" stroke-width="2"/>
<circle cx="40" cy="30" r="5" fill="%[1]s"/>`, line)
	case match.Bishop:
		motif = fmt.Sprintf(`<polygon points="50,20 70,70 30,70" fill="none" stroke="%[1]s" stroke-width="2"/>
<circle cx="50" cy="30" r="10" fill="none" stroke="%[1]s" stroke-width="2"/>`, line)
	case match.Queen:
		motif = fmt.Sprintf(`<polygon points="50,20 70,70 30,70" fill="none" stroke="%[1]s" stroke-width="2"/>
<circle cx="50" cy="40" r="15" fill="none" stroke="%[1]s" stroke-width="2"/>
<rect x="45" y="15" width="10" height="10" fill="none" stroke="%[1]s" stroke-width="2"/>`, line)
	case match.King:
		motif = fmt.Sprintf(`<polygon points="50,20 70,70 30,70" fill="none" stroke="%[1]s" stroke-width="2"/>
<rect x="45" y="15" width="10" height="20" fill="none" stroke="%[1]s" stroke-width="2"/>
<rect x="40" y="10" width="20" height="5" fill="none" stroke="%[1]s" stroke-width="2"/>`, line)
	}

	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
<circle cx="50" cy="50" r="40" fill="%s" stroke="%s" stroke-width="2"/>
%s
</svg>`, fill, line, motif))
}
