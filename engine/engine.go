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

// Package engine defines the contract between MeshPDF and the underlying
// document library. All coordinates crossing this boundary are expressed
// in document points with the origin at the top-left corner of the page
// and y growing downwards; implementations convert to their native
// convention internally.
package engine

import (
	"image"

	"seehuhn.de/go/geom/vec"
)

// Handle is an opaque reference to an open document. A Handle is valid
// until passed to Close and must not be used concurrently.
type Handle interface{}

// Size is a page extent in document points.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in top-left-origin point space.
type Rect struct {
	X, Y, W, H float64
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Black is the default annotation color.
var Black = Color{}

// Raster is a rasterized page. Pix holds 8-bit RGBA samples in row-major
// order; rows are Stride bytes apart, which may exceed 4×Width.
type Raster struct {
	Pix           []byte
	Width, Height int
	Stride        int
}

// Image wraps the raster in an image.RGBA without copying. The stride is
// preserved, so padding bytes are never interpreted as samples.
func (r *Raster) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: r.Stride,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Engine is the document engine collaborator. Implementations wrap a PDF
// library; MeshPDF never parses document files itself.
type Engine interface {
	// Open opens the document at path. Encrypted documents yield an
	// *EncryptedError, unparseable ones a *CorruptError.
	Open(path string) (Handle, error)

	// PageCount reports the number of pages.
	PageCount(h Handle) int

	// PageSize reports the native size of a 0-based page in points.
	PageSize(h Handle, page int) (Size, error)

	// Rasterize renders a page at the given resolution multiplier
	// (pixels per point).
	Rasterize(h Handle, page int, multiplier float64) (*Raster, error)

	// InsertImage places the PNG-encoded image into the page at r,
	// preserving proportions when keepAspect is set and compositing over
	// the existing content.
	InsertImage(h Handle, page int, r Rect, png []byte, keepAspect bool) error

	// InsertText places a text run with its baseline starting at the
	// given point, using the built-in font named by fontName.
	InsertText(h Handle, page int, baseline vec.Vec2, text string, size float64, col Color, fontName string) error

	// Serialize writes the document, with object compaction and stream
	// compression when requested. A failure is reported as a
	// *SerializeError.
	Serialize(h Handle, outPath string, compact, compress bool) error

	// Merge appends all pages of the given documents, in order, into a
	// new document written to outPath. Inputs must already be known to
	// be readable; validity filtering happens in the merge package.
	Merge(paths []string, outPath string) error

	// Close releases the handle.
	Close(h Handle) error
}
