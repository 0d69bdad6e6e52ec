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

// Package merge concatenates documents. Inputs that are encrypted or fail
// to open are recorded and skipped; only a merge that collects zero pages
// is a failure.
package merge

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/coder5617/MeshPDF/engine"
)

// ErrNoPages reports that no input contributed any pages.
var ErrNoPages = errors.New("no valid pages to merge")

// Result describes a completed merge. Path is a fresh temporary file; the
// caller (typically the session) takes ownership of it.
type Result struct {
	Path    string   // merged output
	Pages   int      // total pages collected
	Merged  []string // base names of inputs that contributed
	Skipped []string // base names of inputs that were skipped
}

// Merge appends all pages of the given documents, in input order, into a
// new temporary document and returns its path together with the skipped
// and merged source names.
func Merge(eng engine.Engine, paths []string) (*Result, error) {
	res := &Result{}
	var valid []string

	for _, path := range paths {
		h, err := eng.Open(path)
		if err != nil {
			// Encrypted or unreadable inputs are skipped, not fatal.
			log.Printf("[merge] skipping %s: %v", path, err)
			res.Skipped = append(res.Skipped, filepath.Base(path))
			continue
		}
		res.Pages += eng.PageCount(h)
		eng.Close(h)
		valid = append(valid, path)
		res.Merged = append(res.Merged, filepath.Base(path))
	}

	if res.Pages == 0 {
		return nil, ErrNoPages
	}

	tmp, err := os.CreateTemp("", "meshpdf_merged_*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating merge output: %w", err)
	}
	tmp.Close()

	if err := eng.Merge(valid, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("merging %d documents: %w", len(valid), err)
	}

	res.Path = tmp.Name()
	return res, nil
}
