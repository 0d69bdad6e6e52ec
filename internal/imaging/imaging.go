// github.com/coder5617/MeshPDF - annotate, sign, print, and merge PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package imaging collects the pixel-level helpers shared by the overlay
// model, the print compositor, and the signature pad: smooth resampling,
// source-over compositing, and text measurement/drawing with the bundled
// Go Regular face.
package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FitSize returns the largest size with the aspect ratio of (srcW, srcH)
// that fits within (maxW, maxH). Results are at least 1×1.
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 1, 1
	}
	scale := min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	return max(w, 1), max(h, 1)
}

// Scale resamples src to w×h using Catmull-Rom interpolation.
func Scale(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Over composites src onto dst with its top-left corner at the given point,
// using source-over blending.
func Over(dst draw.Image, src image.Image, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

// FillRect fills r on dst with c using source-over blending.
func FillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

var (
	fontOnce sync.Once
	fontErr  error
	faceMu   sync.Mutex
	faces    map[float64]font.Face
	regular  *opentype.Font
)

// Face returns a Go Regular face at the given point size. Faces are cached
// per size; the returned face must not be used concurrently.
func Face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
		faces = make(map[float64]font.Face)
	})
	if fontErr != nil {
		return nil, fontErr
	}

	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	faces[size] = f
	return f, nil
}

// MeasureString returns the advance width, line height, and ascent of s at
// the given point size, in pixels.
func MeasureString(s string, size float64) (w, h, ascent float64, err error) {
	face, err := Face(size)
	if err != nil {
		return 0, 0, 0, err
	}
	adv := font.MeasureString(face, s)
	m := face.Metrics()
	return fixedToFloat(adv), fixedToFloat(m.Height), fixedToFloat(m.Ascent), nil
}

// DrawString draws s onto dst with the text baseline at (x, y).
func DrawString(dst draw.Image, s string, size float64, x, y float64, c color.Color) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(x),
			Y: floatToFixed(y),
		},
	}
	d.DrawString(s)
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
