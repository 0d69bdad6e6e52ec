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
	"fmt"
	"image"
)

// ChannelOrder names the byte layout of a 32-bit-per-pixel framebuffer.
type ChannelOrder int

const (
	// OrderRGBA is red, green, blue, alpha.
	OrderRGBA ChannelOrder = iota
	// OrderBGRA is blue, green, red, alpha, the layout of many platform
	// framebuffers.
	OrderBGRA
)

// ExportRGBA flattens img into tightly packed RGBA bytes (4×width per
// row). Rows are read at the image's stride; for widths that are not a
// multiple of four the stride commonly exceeds 4×width, and the padding
// bytes must not appear in the output.
func ExportRGBA(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, 4*w*h)
	for y := range h {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*4*w:], img.Pix[off:off+4*w])
	}
	return out
}

// FromBuffer builds an NRGBA image from a raw 32-bit framebuffer,
// honoring the row stride and normalizing the channel order to RGBA.
func FromBuffer(pix []byte, w, h, stride int, order ChannelOrder) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d×%d", w, h)
	}
	if stride < 4*w {
		return nil, fmt.Errorf("stride %d too small for width %d", stride, w)
	}
	if need := stride*(h-1) + 4*w; len(pix) < need {
		return nil, fmt.Errorf("buffer has %d bytes, need %d", len(pix), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		src := pix[y*stride : y*stride+4*w]
		dst := img.Pix[y*img.Stride : y*img.Stride+4*w]
		switch order {
		case OrderRGBA:
			copy(dst, src)
		case OrderBGRA:
			for x := 0; x < 4*w; x += 4 {
				dst[x+0] = src[x+2]
				dst[x+1] = src[x+1]
				dst[x+2] = src[x+0]
				dst[x+3] = src[x+3]
			}
		default:
			return nil, fmt.Errorf("unknown channel order %d", order)
		}
	}
	return img, nil
}
