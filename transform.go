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
	"slices"

	"seehuhn.de/go/geom/vec"

	"github.com/coder5617/MeshPDF/engine"
)

// Zoom bounds. Zoom factors are always clamped into this range.
const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// ClampZoom clamps z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return clampf(z, MinZoom, MaxZoom)
}

// Reanchor re-projects every overlay into the screen space of the given
// zoom. Overlays anchored to pages beyond pageCount refer to pages that no
// longer exist (the document was swapped underneath them) and are dropped
// silently. After Reanchor all remaining overlays have anchor zoom z.
//
// Sizes and font sizes are re-derived from canonical values, never from
// the previous screen values, so repeated zoom changes cannot accumulate
// rounding or resampling error.
func (s *Session) Reanchor(z float64, pageCount int) {
	s.overlays = slices.DeleteFunc(s.overlays, func(o *Overlay) bool {
		return o.page >= pageCount
	})
	for _, o := range s.overlays {
		o.project(z)
	}
}

// OutputRect inverts the overlay's screen-space rectangle into document
// point space. base is the session's fixed render multiplier; together
// with the anchor zoom it determines the resolution of the raster the
// screen coordinates refer to.
func (o *Overlay) OutputRect(base float64) engine.Rect {
	k := 1 / (base * o.anchorZoom)
	return engine.Rect{
		X: o.screenPos.X * k,
		Y: o.screenPos.Y * k,
		W: o.screenSize.X * k,
		H: o.screenSize.Y * k,
	}
}

// OutputFontSize is the font size, in document points, used when the text
// is written into the document. Point-space font size is independent of
// both the render multiplier and the zoom.
func (o *Overlay) OutputFontSize() float64 {
	return o.fontSize
}

// OutputBaseline converts the overlay's top-left anchor into the text
// baseline point in document point space: the vertical insertion point is
// advanced by the output font size.
func (o *Overlay) OutputBaseline(base float64) vec.Vec2 {
	r := o.OutputRect(base)
	return vec.Vec2{X: r.X, Y: r.Y + o.OutputFontSize()}
}
