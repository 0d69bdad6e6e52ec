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

package sigpad

import (
	"bytes"
	"image"
	"testing"
)

func TestExportRGBAHonorsSubImageStride(t *testing.T) {
	full := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range full.Pix {
		full.Pix[i] = byte(i)
	}

	// A 3×2 window whose rows are 32 bytes apart in the backing array.
	sub := full.SubImage(image.Rect(2, 1, 5, 3)).(*image.NRGBA)

	got := ExportRGBA(sub)
	if len(got) != 4*3*2 {
		t.Fatalf("got %d bytes, want %d", len(got), 4*3*2)
	}

	var want []byte
	for y := 1; y < 3; y++ {
		off := full.PixOffset(2, y)
		want = append(want, full.Pix[off:off+12]...)
	}
	if !bytes.Equal(got, want) {
		t.Error("exported bytes do not match the window contents")
	}
}

func TestFromBufferStride(t *testing.T) {
	// 2×2 pixels with 4 bytes of row padding (stride 12).
	const stride = 12
	pix := make([]byte, stride*2)
	for p := range 4 {
		x, y := p%2, p/2
		off := y*stride + 4*x
		pix[off+0] = byte(10 * p) // R
		pix[off+1] = byte(10*p + 1)
		pix[off+2] = byte(10*p + 2)
		pix[off+3] = 255
	}
	// Poison the padding; it must never be read as samples.
	pix[8], pix[9] = 0xDE, 0xAD

	img, err := FromBuffer(pix, 2, 2, stride, OrderRGBA)
	if err != nil {
		t.Fatal(err)
	}
	got := img.NRGBAAt(1, 1)
	if got.R != 30 || got.G != 31 || got.B != 32 || got.A != 255 {
		t.Errorf("pixel (1,1) is %v", got)
	}
}

func TestFromBufferBGRA(t *testing.T) {
	pix := []byte{
		100, 50, 25, 255, // B G R A
	}
	img, err := FromBuffer(pix, 1, 1, 4, OrderBGRA)
	if err != nil {
		t.Fatal(err)
	}
	got := img.NRGBAAt(0, 0)
	if got.R != 25 || got.G != 50 || got.B != 100 || got.A != 255 {
		t.Errorf("normalized pixel is %v, want RGBA(25, 50, 100, 255)", got)
	}
}

func TestFromBufferValidation(t *testing.T) {
	tests := []struct {
		name      string
		pix       []byte
		w, h      int
		stride    int
		order     ChannelOrder
	}{
		{"zero width", make([]byte, 16), 0, 2, 8, OrderRGBA},
		{"stride too small", make([]byte, 16), 2, 2, 4, OrderRGBA},
		{"buffer too short", make([]byte, 10), 2, 2, 8, OrderRGBA},
		{"unknown order", make([]byte, 16), 2, 2, 8, ChannelOrder(99)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromBuffer(tt.pix, tt.w, tt.h, tt.stride, tt.order); err == nil {
				t.Error("no error")
			}
		})
	}
}
