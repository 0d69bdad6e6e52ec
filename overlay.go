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

package meshpdf

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/coder5617/MeshPDF/internal/imaging"
)

// Design constants for newly placed overlays. Signature overlays occupy a
// fixed design box at zoom 1; text overlays use the default font size.
const (
	DesignWidth  = 200 // signature design box width, canonical pixels
	DesignHeight = 100 // signature design box height, canonical pixels

	DefaultFontSize    = 14.0 // canonical text size, points
	minDisplayFontSize = 8.0  // display clamp; canonical values are never clamped

	// TextPadding is the per-side padding of a rendered text overlay
	// (2px padding plus 1px border) at zoom 1. The rendered frame scales
	// with the anchor zoom, like the glyph run it surrounds.
	TextPadding = 3.0
)

// Kind distinguishes the two overlay payloads.
type Kind int

const (
	Signature Kind = iota + 1
	Text
)

func (k Kind) String() string {
	switch k {
	case Signature:
		return "signature"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// SignatureAsset is the immutable source image of a signature overlay,
// captured once at creation time. Every displayed or persisted pixmap is
// derived from this image, never from a previously resampled copy.
type SignatureAsset struct {
	img *image.NRGBA // private copy, never written after construction
}

// NewSignatureAsset copies src into a new asset. The alpha channel is
// preserved.
func NewSignatureAsset(src image.Image) *SignatureAsset {
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Rect, src, b.Min, draw.Src)
	return &SignatureAsset{img: img}
}

// Bounds reports the source image extent.
func (a *SignatureAsset) Bounds() image.Rectangle {
	return a.img.Rect
}

// FitSize returns the displayed size of the asset when aspect-fitted into
// a maxW×maxH box.
func (a *SignatureAsset) FitSize(maxW, maxH int) (int, int) {
	return imaging.FitSize(a.img.Rect.Dx(), a.img.Rect.Dy(), maxW, maxH)
}

// Render resamples the original image to fit a maxW×maxH box. Each call
// starts from the captured source, so repeated rescaling cannot compound
// quality loss.
func (a *SignatureAsset) Render(maxW, maxH int) *image.NRGBA {
	w, h := a.FitSize(maxW, maxH)
	return imaging.Scale(a.img, w, h)
}

// PNG encodes the original image, alpha included.
func (a *SignatureAsset) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, a.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Overlay is a user-placed annotation anchored to a page.
//
// The authoritative position is kept in canonical screen space (pixels of
// the zoom = 1 raster) as a float; the integer screen position and size are
// caches valid only at anchorZoom and are re-derived from the canonical
// state whenever the zoom changes. Only the session's re-anchor step may
// write anchorZoom.
type Overlay struct {
	id   string
	kind Kind
	page int

	pos        vec.Vec2 // canonical position (top-left; for text, the click point)
	anchorZoom float64
	screenPos  vec.Vec2 // pixels at anchorZoom, rounded
	screenSize vec.Vec2 // pixels at anchorZoom

	asset    *SignatureAsset // kind == Signature
	text     string          // kind == Text
	fontSize float64         // canonical, kind == Text
}

// ID returns the overlay's stable identifier.
func (o *Overlay) ID() string { return o.id }

// Kind returns the payload kind.
func (o *Overlay) Kind() Kind { return o.kind }

// Page returns the 0-based page index.
func (o *Overlay) Page() int { return o.page }

// AnchorZoom is the zoom level at which ScreenPos and ScreenSize are valid.
func (o *Overlay) AnchorZoom() float64 { return o.anchorZoom }

// ScreenPos is the top-left corner in pixels of the anchorZoom raster.
func (o *Overlay) ScreenPos() vec.Vec2 { return o.screenPos }

// ScreenSize is the extent in pixels of the anchorZoom raster.
func (o *Overlay) ScreenSize() vec.Vec2 { return o.screenSize }

// Text returns the text content. Empty for signature overlays.
func (o *Overlay) Text() string { return o.text }

// FontSize returns the canonical (zoom-independent) font size.
func (o *Overlay) FontSize() float64 { return o.fontSize }

// Asset returns the signature source image, or nil for text overlays.
func (o *Overlay) Asset() *SignatureAsset { return o.asset }

// DisplayFontSize is the font size used for on-screen and print rendering
// at the current anchor zoom. It is always derived from the canonical size,
// never from a previously scaled value.
func (o *Overlay) DisplayFontSize() float64 {
	return max(minDisplayFontSize, o.fontSize*o.anchorZoom)
}

// Pixmap renders the signature at its current screen size, resampled from
// the immutable asset. It returns nil for text overlays.
func (o *Overlay) Pixmap() *image.NRGBA {
	if o.kind != Signature {
		return nil
	}
	return o.asset.Render(int(o.screenSize.X), int(o.screenSize.Y))
}

// project recomputes the screen-space cache for zoom z from the canonical
// state. This is the only writer of anchorZoom.
func (o *Overlay) project(z float64) {
	o.anchorZoom = z
	o.screenPos = vec.Vec2{
		X: math.Round(o.pos.X * z),
		Y: math.Round(o.pos.Y * z),
	}
	switch o.kind {
	case Signature:
		w, h := o.asset.FitSize(roundInt(DesignWidth*z), roundInt(DesignHeight*z))
		o.screenSize = vec.Vec2{X: float64(w), Y: float64(h)}
	case Text:
		o.screenSize = textExtent(o.text, o.DisplayFontSize(), z)
	}
}

// textExtent measures the rendered glyph run plus the label padding, both
// in pixels of the zoom z raster.
func textExtent(s string, size, z float64) vec.Vec2 {
	w, h, _, err := imaging.MeasureString(s, size)
	if err != nil {
		// The bundled face failed to load; estimate so layout stays sane.
		w = 0.6 * size * float64(len(s))
		h = 1.2 * size
	}
	pad := 2 * TextPadding * z
	return vec.Vec2{
		X: math.Ceil(w + pad),
		Y: math.Ceil(h + pad),
	}
}

func roundInt(v float64) int { return int(math.Round(v)) }
