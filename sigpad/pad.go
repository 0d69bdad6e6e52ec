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

// Package sigpad captures freehand signatures into a transparent
// alpha-channel canvas. Consecutive pointer samples become anti-aliased,
// round-capped ink segments; accepting the pad yields an immutable
// signature asset for overlay placement.
package sigpad

import (
	"errors"
	"image"
	"image/color"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/internal/ink"
)

// Canvas and stroke defaults, matching the signature dialog's drawing area.
const (
	DefaultWidth  = 380
	DefaultHeight = 200

	strokeWidth = 2.5
)

// strokeColor is the fixed ink color, a dark blue.
var strokeColor = color.NRGBA{R: 0, G: 0, B: 100, A: 255}

// ErrNoContent reports acceptance of a pad without any strokes.
var ErrNoContent = errors.New("signature is empty")

// Pad is a signature capture surface. The canvas starts fully transparent;
// only drawn ink carries alpha.
type Pad struct {
	canvas *image.NRGBA
	pen    *ink.Pen

	last   vec.Vec2
	active bool
	has    bool
}

// New creates a pad with a w×h transparent canvas.
func New(w, h int) *Pad {
	clip := rect.Rect{URx: float64(w), URy: float64(h)}
	return &Pad{
		canvas: image.NewNRGBA(image.Rect(0, 0, w, h)),
		pen:    ink.NewPen(clip, strokeWidth, strokeColor),
	}
}

// Begin starts a stroke at the given point. Points outside the canvas are
// ignored. The pad has content from the first accepted press on.
func (p *Pad) Begin(at vec.Vec2) {
	if !p.inside(at) {
		return
	}
	p.active = true
	p.last = at
	p.has = true
}

// Move extends the active stroke to the given point, drawing a connected
// line segment from the previous sample. Samples outside the canvas end
// nothing; they are simply skipped.
func (p *Pad) Move(at vec.Vec2) {
	if !p.active || !p.inside(at) {
		return
	}
	p.pen.Segment(p.canvas, p.last, at)
	p.last = at
}

// End finishes the active stroke.
func (p *Pad) End() {
	p.active = false
}

// Clear erases the canvas back to full transparency and resets the
// content flag.
func (p *Pad) Clear() {
	clear(p.canvas.Pix)
	p.has = false
	p.active = false
}

// HasContent reports whether anything has been drawn since the last Clear.
func (p *Pad) HasContent() bool { return p.has }

// Canvas returns the live canvas. Callers must treat it as read-only.
func (p *Pad) Canvas() *image.NRGBA { return p.canvas }

// Pixels exports the canvas as tightly packed RGBA bytes. Rows are read
// honoring the canvas stride, so padding bytes never leak into the output.
func (p *Pad) Pixels() []byte {
	return ExportRGBA(p.canvas)
}

// Accept validates the pad and captures its content as an immutable
// signature asset. An empty pad yields ErrNoContent and no asset.
func (p *Pad) Accept() (*meshpdf.SignatureAsset, error) {
	if !p.has {
		return nil, ErrNoContent
	}
	return meshpdf.NewSignatureAsset(p.canvas), nil
}

func (p *Pad) inside(at vec.Vec2) bool {
	return at.X >= 0 && at.X < float64(p.canvas.Rect.Dx()) &&
		at.Y >= 0 && at.Y < float64(p.canvas.Rect.Dy())
}
