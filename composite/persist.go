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

// Package composite reconciles screen-space overlays with the two output
// spaces: document point space for saving (vector write-out through the
// document engine) and device pixels for printing (alpha-composited page
// rasters).
package composite

import (
	"fmt"
	"io"
	"log"
	"os"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/engine"
)

// DefaultFont is the document-safe font used for persisted text runs when
// the caller does not name one.
const DefaultFont = "Helvetica"

// Result reports the outcome of a persist operation.
type Result struct {
	Applied int      // overlays written into the document
	Failed  []string // ids of overlays whose insertion failed
}

// Persist writes the session's document, with all overlays inverted into
// point space, to outPath. Text runs are stamped in font; an empty name
// falls back to DefaultFont.
//
// A session without overlays is copied byte-identically. A failure on a
// single overlay is logged and skipped; it never aborts the save. The
// overlay collection is cleared only after the serialize has succeeded,
// so a failed save can be retried.
func Persist(eng engine.Engine, sess *meshpdf.Session, base float64, font, outPath string) (*Result, error) {
	release := sess.Lock()
	defer release()

	if font == "" {
		font = DefaultFont
	}

	overlays := sess.Overlays()
	if len(overlays) == 0 {
		if err := copyFile(sess.Path(), outPath); err != nil {
			return nil, fmt.Errorf("copying unmodified document: %w", err)
		}
		return &Result{}, nil
	}

	h, err := eng.Open(sess.Path())
	if err != nil {
		return nil, fmt.Errorf("opening source document: %w", err)
	}
	defer eng.Close(h)

	res := &Result{}
	for _, o := range overlays {
		if err := apply(eng, h, o, base, font); err != nil {
			log.Printf("[save] skipping %s overlay %s on page %d: %v",
				o.Kind(), o.ID(), o.Page(), err)
			res.Failed = append(res.Failed, o.ID())
			continue
		}
		res.Applied++
	}

	if err := eng.Serialize(h, outPath, true, true); err != nil {
		return res, err
	}

	sess.ClearOverlays()
	return res, nil
}

// apply inserts one overlay into the open document at its point-space
// location.
func apply(eng engine.Engine, h engine.Handle, o *meshpdf.Overlay, base float64, font string) error {
	switch o.Kind() {
	case meshpdf.Signature:
		png, err := o.Asset().PNG()
		if err != nil {
			return fmt.Errorf("encoding signature: %w", err)
		}
		return eng.InsertImage(h, o.Page(), o.OutputRect(base), png, true)

	case meshpdf.Text:
		return eng.InsertText(h, o.Page(), o.OutputBaseline(base),
			o.Text(), o.OutputFontSize(), engine.Black, font)

	default:
		return fmt.Errorf("unknown overlay kind %d", o.Kind())
	}
}

// copyFile copies src to dst. The copy is byte-identical.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
