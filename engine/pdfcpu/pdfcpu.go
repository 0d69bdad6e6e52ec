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

// Package pdfcpu implements the document engine contract on top of
// github.com/pdfcpu/pdfcpu. Overlays are stamped as absolutely positioned,
// fully opaque watermarks on top of the existing page content.
//
// pdfcpu ships no content rasteriser, so Rasterize returns a raster with
// the correct pixel geometry and a white background; rendered page content
// is only available from engines that wrap a rendering library.
package pdfcpu

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"seehuhn.de/go/geom/vec"

	"github.com/coder5617/MeshPDF/engine"
)

// Engine is a document engine backed by pdfcpu.
type Engine struct {
	conf *model.Configuration
}

// New returns an Engine with the default pdfcpu configuration.
func New() *Engine {
	return &Engine{conf: model.NewDefaultConfiguration()}
}

type doc struct {
	path string
	ctx  *model.Context
}

// Open reads and validates the document at path.
func (e *Engine) Open(path string) (engine.Handle, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		if isEncryptionError(err) {
			return nil, &engine.EncryptedError{Path: path}
		}
		return nil, &engine.CorruptError{Path: path, Err: err}
	}
	if ctx.Encrypt != nil {
		return nil, &engine.EncryptedError{Path: path}
	}
	return &doc{path: path, ctx: ctx}, nil
}

func isEncryptionError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "password") || strings.Contains(s, "encrypt")
}

// PageCount reports the number of pages.
func (e *Engine) PageCount(h engine.Handle) int {
	return h.(*doc).ctx.PageCount
}

// PageSize reports the media box of a 0-based page in points.
func (e *Engine) PageSize(h engine.Handle, page int) (engine.Size, error) {
	d := h.(*doc)
	dims, err := d.ctx.PageDims()
	if err != nil {
		return engine.Size{}, fmt.Errorf("reading page dimensions: %w", err)
	}
	if page < 0 || page >= len(dims) {
		return engine.Size{}, fmt.Errorf("page %d out of range [0, %d)", page, len(dims))
	}
	return engine.Size{Width: dims[page].Width, Height: dims[page].Height}, nil
}

// Rasterize returns a white raster of the page's pixel geometry at the
// given multiplier. See the package comment for the limitation.
func (e *Engine) Rasterize(h engine.Handle, page int, multiplier float64) (*engine.Raster, error) {
	size, err := e.PageSize(h, page)
	if err != nil {
		return nil, err
	}
	w := max(1, int(size.Width*multiplier+0.5))
	hh := max(1, int(size.Height*multiplier+0.5))

	pix := make([]byte, 4*w*hh)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &engine.Raster{Pix: pix, Width: w, Height: hh, Stride: 4 * w}, nil
}

// InsertImage stamps the PNG-encoded image over the page at r (top-left
// origin point space). If direct insertion fails, the image is decoded,
// normalized to a plain pixmap, and inserted again.
func (e *Engine) InsertImage(h engine.Handle, page int, r engine.Rect, pngBytes []byte, keepAspect bool) error {
	err := e.insertImageOnce(h, page, r, pngBytes, keepAspect)
	if err == nil {
		return nil
	}

	// Fallback: re-encode through a normalized NRGBA pixmap, alpha kept.
	img, derr := png.Decode(bytes.NewReader(pngBytes))
	if derr != nil {
		return err
	}
	b := img.Bounds()
	pixmap := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			pixmap.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	var buf bytes.Buffer
	if eerr := png.Encode(&buf, pixmap); eerr != nil {
		return err
	}
	return e.insertImageOnce(h, page, r, buf.Bytes(), keepAspect)
}

func (e *Engine) insertImageOnce(h engine.Handle, page int, r engine.Rect, pngBytes []byte, keepAspect bool) (err error) {
	d := h.(*doc)

	pageSize, err := e.PageSize(h, page)
	if err != nil {
		return err
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(pngBytes))
	if err != nil {
		return fmt.Errorf("decoding signature image: %w", err)
	}

	// pdfcpu renders an unscaled image at one point per pixel; an absolute
	// scale factor fits it into the target rectangle.
	var scale float64
	sx := r.W / float64(cfg.Width)
	sy := r.H / float64(cfg.Height)
	if keepAspect {
		scale = min(sx, sy)
	} else {
		scale = sx
	}

	// The watermark machinery reads image data from a file. The temporary
	// file is scoped to this call and removed on every exit path.
	tmp, err := os.CreateTemp("", "meshpdf_stamp_*.png")
	if err != nil {
		return fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(pngBytes); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	desc := fmt.Sprintf("scale:%.5f abs, pos:bl, rot:0, op:1", scale)
	wm, err := pdfcpulib.ParseImageWatermarkDetails(tmp.Name(), desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("building image stamp: %w", err)
	}

	// Convert the top-left-origin rectangle to offsets from the page's
	// bottom-left corner.
	wm.Dx = r.X
	wm.Dy = pageSize.Height - r.Y - r.H

	pages := types.IntSet{page + 1: true}
	if err := pdfcpulib.AddWatermarks(d.ctx, pages, wm); err != nil {
		return fmt.Errorf("stamping image on page %d: %w", page, err)
	}
	return nil
}

// InsertText stamps a text run whose baseline starts at the given
// top-left-origin point.
func (e *Engine) InsertText(h engine.Handle, page int, baseline vec.Vec2, text string, size float64, col engine.Color, fontName string) error {
	d := h.(*doc)

	pageSize, err := e.PageSize(h, page)
	if err != nil {
		return err
	}

	fill := fmt.Sprintf("#%02x%02x%02x",
		uint8(col.R*255+0.5), uint8(col.G*255+0.5), uint8(col.B*255+0.5))
	desc := fmt.Sprintf("font:%s, points:%.2f, scale:1 abs, pos:bl, rot:0, fillcolor:%s, op:1",
		fontName, size, fill)

	wm, err := pdfcpulib.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("building text stamp: %w", err)
	}
	wm.Dx = baseline.X
	wm.Dy = pageSize.Height - baseline.Y

	pages := types.IntSet{page + 1: true}
	if err := pdfcpulib.AddWatermarks(d.ctx, pages, wm); err != nil {
		return fmt.Errorf("stamping text on page %d: %w", page, err)
	}
	return nil
}

// Serialize writes the document. With compact set the cross-reference
// table is optimized (unused objects dropped, duplicate resources merged);
// stream compression is pdfcpu's default write behavior.
func (e *Engine) Serialize(h engine.Handle, outPath string, compact, compress bool) error {
	d := h.(*doc)
	if compact {
		if err := pdfcpulib.OptimizeXRefTable(d.ctx); err != nil {
			return &engine.SerializeError{Path: outPath, Err: err}
		}
	}
	d.ctx.Configuration.WriteObjectStream = compress
	if err := api.WriteContextFile(d.ctx, outPath); err != nil {
		return &engine.SerializeError{Path: outPath, Err: err}
	}
	return nil
}

// Merge appends all pages of the given documents into outPath.
func (e *Engine) Merge(paths []string, outPath string) error {
	if err := api.MergeCreateFile(paths, outPath, false, e.conf); err != nil {
		return fmt.Errorf("merging documents: %w", err)
	}
	return nil
}

// Close releases the handle. pdfcpu contexts hold no OS resources.
func (e *Engine) Close(h engine.Handle) error {
	return nil
}
