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

package composite

import (
	"fmt"
	"image"
	"image/color"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/internal/imaging"
)

// Device is the print target: a sequence of physical pages addressed in
// device pixels.
type Device interface {
	// PageRect is the printable page size in device pixels.
	PageRect() (w, h int)

	// NewPage starts the next physical page.
	NewPage() error

	// Draw places img with its top-left corner at (x, y).
	Draw(img image.Image, x, y int) error
}

// textBackground is the semi-transparent label fill behind printed text
// overlays.
var textBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 200}

// Print composites each page raster with its overlays and emits the pages
// to dev in index order, starting a new physical page before each page
// after the first.
//
// Unlike persistence, printing uses screen-space values directly: the
// composite is built on a canvas of the same resolution the overlay
// coordinates are already expressed in, then uniformly scaled to fit the
// device page and centered.
func Print(dev Device, pages []*image.RGBA, sess *meshpdf.Session) error {
	release := sess.Lock()
	defer release()

	devW, devH := dev.PageRect()
	if devW <= 0 || devH <= 0 {
		return fmt.Errorf("invalid device page %d×%d", devW, devH)
	}

	for i, base := range pages {
		if i > 0 {
			if err := dev.NewPage(); err != nil {
				return fmt.Errorf("starting page %d: %w", i+1, err)
			}
		}

		comp, err := ComposePage(base, sess.ListForPage(i))
		if err != nil {
			return fmt.Errorf("compositing page %d: %w", i+1, err)
		}

		w, h := imaging.FitSize(comp.Rect.Dx(), comp.Rect.Dy(), devW, devH)
		scaled := imaging.Scale(comp, w, h)

		if err := dev.Draw(scaled, (devW-w)/2, (devH-h)/2); err != nil {
			return fmt.Errorf("drawing page %d: %w", i+1, err)
		}
	}
	return nil
}

// ComposePage alpha-composites a page's overlays over its raster. The
// result starts as a fully transparent canvas of the raster's size; the
// base and all overlays are blended source-over in stacking order.
func ComposePage(base *image.RGBA, overlays []*meshpdf.Overlay) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, base.Rect.Dx(), base.Rect.Dy()))
	imaging.Over(canvas, base, image.Point{})

	for _, o := range overlays {
		at := image.Point{X: int(o.ScreenPos().X), Y: int(o.ScreenPos().Y)}

		switch o.Kind() {
		case meshpdf.Signature:
			// Always resampled from the immutable asset, never from a
			// previously scaled pixmap.
			imaging.Over(canvas, o.Pixmap(), at)

		case meshpdf.Text:
			size := o.ScreenSize()
			r := image.Rect(at.X, at.Y, at.X+int(size.X), at.Y+int(size.Y))
			imaging.FillRect(canvas, r, textBackground)

			fs := o.DisplayFontSize()
			_, _, ascent, err := imaging.MeasureString(o.Text(), fs)
			if err != nil {
				return nil, err
			}
			pad := meshpdf.TextPadding * o.AnchorZoom()
			x := float64(at.X) + pad
			y := float64(at.Y) + pad + ascent
			if err := imaging.DrawString(canvas, o.Text(), fs, x, y, color.Black); err != nil {
				return nil, err
			}
		}
	}
	return canvas, nil
}
