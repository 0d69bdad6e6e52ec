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

package merge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coder5617/MeshPDF/engine/enginetest"
)

func TestMergeSkipsUnreadableInputs(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()

	a := enginetest.WriteDoc(t, dir, "a.json", enginetest.NewDoc(3, 612, 792))
	locked := enginetest.NewDoc(1, 612, 792)
	locked.Encrypted = true
	b := enginetest.WriteDoc(t, dir, "b.json", locked)
	c := enginetest.WriteDoc(t, dir, "c.json", enginetest.NewDoc(2, 612, 792))

	res, err := Merge(eng, []string{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.Path)

	if res.Pages != 5 {
		t.Errorf("collected %d pages, want 5", res.Pages)
	}
	if diff := cmp.Diff([]string{"a.json", "c.json"}, res.Merged); diff != "" {
		t.Errorf("merged inputs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b.json"}, res.Skipped); diff != "" {
		t.Errorf("skipped inputs (-want +got):\n%s", diff)
	}

	// Page order follows input order.
	doc := enginetest.ReadDoc(t, res.Path)
	if len(doc.Pages) != 5 {
		t.Errorf("output has %d pages, want 5", len(doc.Pages))
	}
}

func TestMergeMissingFileSkipped(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()

	a := enginetest.WriteDoc(t, dir, "a.json", enginetest.NewDoc(1, 612, 792))
	missing := filepath.Join(dir, "nope.json")

	res, err := Merge(eng, []string{missing, a})
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.Path)

	if res.Pages != 1 || len(res.Skipped) != 1 {
		t.Errorf("pages %d, skipped %v", res.Pages, res.Skipped)
	}
}

func TestMergeNoValidPages(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()

	locked := enginetest.NewDoc(2, 612, 792)
	locked.Encrypted = true
	b := enginetest.WriteDoc(t, dir, "b.json", locked)

	_, err := Merge(eng, []string{b})
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("got %v, want ErrNoPages", err)
	}
}

func TestMergeOutputIsTemporary(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()

	a := enginetest.WriteDoc(t, dir, "a.json", enginetest.NewDoc(1, 612, 792))

	res, err := Merge(eng, []string{a})
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.Path)

	if res.Path == a {
		t.Error("merge wrote over its input")
	}
	if filepath.Ext(res.Path) != ".pdf" {
		t.Errorf("output %q has no .pdf extension", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("output missing: %v", err)
	}
}
