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

// Package enginetest provides an in-memory document engine for tests.
//
// Documents are JSON files, so anything a test saves can be re-opened and
// every stamped overlay inspected with exact coordinates. Rasters use a
// padded stride to keep stride handling honest in callers.
package enginetest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/coder5617/MeshPDF/engine"
)

// Doc is the serialized form of a fake document.
type Doc struct {
	Encrypted bool   `json:"encrypted,omitempty"`
	Pages     []Page `json:"pages"`
}

// Page is one page with the stamps applied to it, in application order.
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Images []ImageStamp `json:"images,omitempty"`
	Texts  []TextStamp  `json:"texts,omitempty"`
}

// ImageStamp records one InsertImage call.
type ImageStamp struct {
	Rect       engine.Rect `json:"rect"`
	PNG        []byte      `json:"png"`
	KeepAspect bool        `json:"keep_aspect"`
}

// TextStamp records one InsertText call.
type TextStamp struct {
	Baseline vec.Vec2     `json:"baseline"`
	Text     string       `json:"text"`
	Size     float64      `json:"size"`
	Color    engine.Color `json:"color"`
	Font     string       `json:"font"`
}

// NewDoc returns an n-page document with uniform page size.
func NewDoc(n int, w, h float64) *Doc {
	d := &Doc{}
	for range n {
		d.Pages = append(d.Pages, Page{Width: w, Height: h})
	}
	return d
}

// WriteDoc serializes doc to dir/name and returns the path.
func WriteDoc(t *testing.T, dir, name string, doc *Doc) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ReadDoc parses the fake document at path.
func ReadDoc(t *testing.T, path string) *Doc {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := &Doc{}
	if err := json.Unmarshal(data, doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

type handle struct {
	doc *Doc
}

// Engine implements engine.Engine on JSON documents.
type Engine struct {
	// StridePad is the number of padding bytes appended to each raster
	// row beyond the 4×width samples.
	StridePad int

	// FailHook, when non-nil, is consulted before each mutating
	// operation ("image", "text", "serialize"); a non-nil return fails
	// that operation.
	FailHook func(op string, page int) error
}

// New returns an Engine with 8 bytes of row padding.
func New() *Engine {
	return &Engine{StridePad: 8}
}

func (e *Engine) fail(op string, page int) error {
	if e.FailHook == nil {
		return nil
	}
	return e.FailHook(op, page)
}

func (e *Engine) Open(path string) (engine.Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &engine.CorruptError{Path: path, Err: err}
	}
	doc := &Doc{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &engine.CorruptError{Path: path, Err: err}
	}
	if doc.Encrypted {
		return nil, &engine.EncryptedError{Path: path}
	}
	return &handle{doc: doc}, nil
}

func (e *Engine) PageCount(h engine.Handle) int {
	return len(h.(*handle).doc.Pages)
}

func (e *Engine) PageSize(h engine.Handle, page int) (engine.Size, error) {
	d := h.(*handle).doc
	if page < 0 || page >= len(d.Pages) {
		return engine.Size{}, fmt.Errorf("page %d out of range [0, %d)", page, len(d.Pages))
	}
	return engine.Size{Width: d.Pages[page].Width, Height: d.Pages[page].Height}, nil
}

// Rasterize returns a white raster with the page index encoded in the
// first pixel's red sample, so tests can tell pages apart.
func (e *Engine) Rasterize(h engine.Handle, page int, multiplier float64) (*engine.Raster, error) {
	size, err := e.PageSize(h, page)
	if err != nil {
		return nil, err
	}
	w := max(1, int(size.Width*multiplier+0.5))
	hh := max(1, int(size.Height*multiplier+0.5))
	stride := 4*w + e.StridePad

	pix := make([]byte, stride*hh)
	for y := range hh {
		row := pix[y*stride : y*stride+4*w]
		for i := range row {
			row[i] = 0xFF
		}
	}
	pix[0] = byte(page)
	return &engine.Raster{Pix: pix, Width: w, Height: hh, Stride: stride}, nil
}

func (e *Engine) InsertImage(h engine.Handle, page int, r engine.Rect, png []byte, keepAspect bool) error {
	if err := e.fail("image", page); err != nil {
		return err
	}
	d := h.(*handle).doc
	if page < 0 || page >= len(d.Pages) {
		return fmt.Errorf("page %d out of range [0, %d)", page, len(d.Pages))
	}
	d.Pages[page].Images = append(d.Pages[page].Images, ImageStamp{
		Rect: r, PNG: png, KeepAspect: keepAspect,
	})
	return nil
}

func (e *Engine) InsertText(h engine.Handle, page int, baseline vec.Vec2, text string, size float64, col engine.Color, fontName string) error {
	if err := e.fail("text", page); err != nil {
		return err
	}
	d := h.(*handle).doc
	if page < 0 || page >= len(d.Pages) {
		return fmt.Errorf("page %d out of range [0, %d)", page, len(d.Pages))
	}
	d.Pages[page].Texts = append(d.Pages[page].Texts, TextStamp{
		Baseline: baseline, Text: text, Size: size, Color: col, Font: fontName,
	})
	return nil
}

func (e *Engine) Serialize(h engine.Handle, outPath string, compact, compress bool) error {
	if err := e.fail("serialize", -1); err != nil {
		return &engine.SerializeError{Path: outPath, Err: err}
	}
	data, err := json.Marshal(h.(*handle).doc)
	if err != nil {
		return &engine.SerializeError{Path: outPath, Err: err}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return &engine.SerializeError{Path: outPath, Err: err}
	}
	return nil
}

func (e *Engine) Merge(paths []string, outPath string) error {
	out := &Doc{}
	for _, path := range paths {
		h, err := e.Open(path)
		if err != nil {
			return err
		}
		out.Pages = append(out.Pages, h.(*handle).doc.Pages...)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

func (e *Engine) Close(h engine.Handle) error {
	return nil
}
