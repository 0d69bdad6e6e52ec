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

package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{400, 200, 200, 100, 200, 100}, // same aspect
		{400, 200, 100, 100, 100, 50},  // width-bound
		{200, 400, 100, 100, 50, 100},  // height-bound
		{10, 10, 1000, 5, 5, 5},        // upscale capped by height
		{1, 1000, 100, 100, 1, 100},    // extreme aspect stays ≥ 1
		{0, 10, 50, 50, 1, 1},          // degenerate input
	}
	for _, tt := range tests {
		w, h := FitSize(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitSize(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.srcW, tt.srcH, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestScale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+2] = 100 // B
		src.Pix[i+3] = 255
	}

	dst := Scale(src, 20, 10)
	if b := dst.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("scaled to %d×%d", b.Dx(), b.Dy())
	}
	// A uniform source stays uniform under resampling.
	got := dst.NRGBAAt(10, 5)
	if got.B < 98 || got.B > 102 || got.A != 255 {
		t.Errorf("center pixel %v", got)
	}
}

func TestOverBlendsAlpha(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	FillRect(dst, dst.Rect, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	FillRect(src, src.Rect, color.NRGBA{A: 128}) // half-transparent black

	Over(dst, src, image.Point{X: 2, Y: 2})

	got := dst.NRGBAAt(3, 3)
	if got.R < 100 || got.R > 150 {
		t.Errorf("blended pixel %v, want a mid gray", got)
	}
	if got := dst.NRGBAAt(0, 0); got.R != 255 {
		t.Errorf("pixel outside the source changed: %v", got)
	}
}

func TestMeasureString(t *testing.T) {
	w, h, ascent, err := MeasureString("Approved", 14)
	if err != nil {
		t.Fatal(err)
	}
	if w <= 0 || h <= 0 || ascent <= 0 {
		t.Fatalf("degenerate metrics w=%g h=%g ascent=%g", w, h, ascent)
	}
	if ascent >= h {
		t.Errorf("ascent %g not below line height %g", ascent, h)
	}

	// A longer run is wider; a larger size is wider still.
	w2, _, _, err := MeasureString("Approved and countersigned", 14)
	if err != nil {
		t.Fatal(err)
	}
	w3, _, _, err := MeasureString("Approved", 28)
	if err != nil {
		t.Fatal(err)
	}
	if w2 <= w || w3 <= w {
		t.Errorf("widths not monotonic: %g, %g, %g", w, w2, w3)
	}
}

func TestDrawString(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 100, 30))
	if err := DrawString(dst, "Hi", 14, 5, 20, color.Black); err != nil {
		t.Fatal(err)
	}

	inked := false
	for _, v := range dst.Pix {
		if v != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("nothing drawn")
	}
}

func TestFaceCached(t *testing.T) {
	a, err := Face(14)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Face(14)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same size produced distinct faces")
	}
}
