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
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/vec"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/engine"
	"github.com/coder5617/MeshPDF/engine/enginetest"
)

// solidImage returns an opaque single-color w×h image.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func TestPersistWithoutOverlaysCopiesBytes(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	sess := meshpdf.NewSession(src)

	res, err := Persist(eng, sess, 2.0, "", out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 0 || len(res.Failed) != 0 {
		t.Errorf("result %+v for empty session", res)
	}

	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("output is not a byte-identical copy")
	}
}

func TestPersistText(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	sess := meshpdf.NewSession(src)

	// Placed at zoom 1, then viewed at zoom 2 before saving. The stamped
	// coordinates must be independent of the anchor zoom.
	if _, err := sess.PlaceText(0, vec.Vec2{X: 100, Y: 100}, "Approved", 1.0); err != nil {
		t.Fatal(err)
	}
	sess.Reanchor(2.0, 1)

	res, err := Persist(eng, sess, 1.0, "", out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 1 {
		t.Fatalf("applied %d overlays", res.Applied)
	}

	doc := enginetest.ReadDoc(t, out)
	if len(doc.Pages[0].Texts) != 1 {
		t.Fatalf("%d text stamps", len(doc.Pages[0].Texts))
	}
	got := doc.Pages[0].Texts[0]
	want := enginetest.TextStamp{
		Baseline: vec.Vec2{X: 100, Y: 114},
		Text:     "Approved",
		Size:     14,
		Color:    engine.Black,
		Font:     DefaultFont,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("text stamp mismatch (-want +got):\n%s", diff)
	}

	if len(sess.Overlays()) != 0 {
		t.Error("overlays not cleared after successful save")
	}
}

func TestPersistUsesConfiguredFont(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	sess := meshpdf.NewSession(src)
	if _, err := sess.PlaceText(0, vec.Vec2{X: 10, Y: 10}, "x", 1.0); err != nil {
		t.Fatal(err)
	}

	if _, err := Persist(eng, sess, 1.0, "Courier", out); err != nil {
		t.Fatal(err)
	}

	doc := enginetest.ReadDoc(t, out)
	if got := doc.Pages[0].Texts[0].Font; got != "Courier" {
		t.Errorf("stamped font %q, want Courier", got)
	}
}

func TestPersistSignature(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	sess := meshpdf.NewSession(src)

	asset := meshpdf.NewSignatureAsset(solidImage(400, 200, color.NRGBA{B: 100, A: 255}))
	if _, err := sess.PlaceSignature(0, vec.Vec2{X: 300, Y: 150}, asset, 1.0); err != nil {
		t.Fatal(err)
	}

	// base 2: screen pixels are twice the point values.
	if _, err := Persist(eng, sess, 2.0, "", out); err != nil {
		t.Fatal(err)
	}

	doc := enginetest.ReadDoc(t, out)
	if len(doc.Pages[0].Images) != 1 {
		t.Fatalf("%d image stamps", len(doc.Pages[0].Images))
	}
	stamp := doc.Pages[0].Images[0]
	if want := (engine.Rect{X: 100, Y: 50, W: 100, H: 50}); stamp.Rect != want {
		t.Errorf("rect %+v, want %+v", stamp.Rect, want)
	}
	if !stamp.KeepAspect {
		t.Error("aspect ratio not preserved")
	}

	// The stamped image is the original capture, not a resampled copy.
	img, err := png.Decode(bytes.NewReader(stamp.PNG))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("stamped image is %d×%d, want 400×200", b.Dx(), b.Dy())
	}
}

func TestPersistSkipsFailedOverlays(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	sess := meshpdf.NewSession(src)

	var ids []string
	for i := range 3 {
		o, err := sess.PlaceText(0, vec.Vec2{X: float64(10 + 20*i), Y: 50}, fmt.Sprintf("note %d", i), 1.0)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, o.ID())
	}

	// Fail the second text insertion only.
	calls := 0
	eng.FailHook = func(op string, page int) error {
		if op != "text" {
			return nil
		}
		calls++
		if calls == 2 {
			return errors.New("boom")
		}
		return nil
	}

	res, err := Persist(eng, sess, 1.0, "", out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 2 {
		t.Errorf("applied %d, want 2", res.Applied)
	}
	if len(res.Failed) != 1 || res.Failed[0] != ids[1] {
		t.Errorf("failed %v, want [%s]", res.Failed, ids[1])
	}

	doc := enginetest.ReadDoc(t, out)
	if got := len(doc.Pages[0].Texts); got != 2 {
		t.Errorf("%d stamps written, want 2", got)
	}
	if len(sess.Overlays()) != 0 {
		t.Error("overlays not cleared after successful save")
	}
}

func TestPersistKeepsOverlaysOnSerializeFailure(t *testing.T) {
	dir := t.TempDir()
	src := enginetest.WriteDoc(t, dir, "in.json", enginetest.NewDoc(1, 612, 792))
	out := filepath.Join(dir, "out.json")

	eng := enginetest.New()
	eng.FailHook = func(op string, page int) error {
		if op == "serialize" {
			return errors.New("disk full")
		}
		return nil
	}

	sess := meshpdf.NewSession(src)
	if _, err := sess.PlaceText(0, vec.Vec2{X: 10, Y: 10}, "keep me", 1.0); err != nil {
		t.Fatal(err)
	}

	_, err := Persist(eng, sess, 1.0, "", out)
	var serr *engine.SerializeError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want a SerializeError", err)
	}

	// A failed save must leave the session intact for a retry.
	if len(sess.Overlays()) != 1 {
		t.Error("overlays cleared by a failed save")
	}
}

func TestPersistOpenError(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()
	sess := meshpdf.NewSession(filepath.Join(dir, "missing.json"))
	if _, err := sess.PlaceText(0, vec.Vec2{X: 10, Y: 10}, "x", 1.0); err != nil {
		t.Fatal(err)
	}

	_, err := Persist(eng, sess, 1.0, "", filepath.Join(dir, "out.json"))
	if err == nil {
		t.Fatal("no error for missing source document")
	}
	var cerr *engine.CorruptError
	if !errors.As(err, &cerr) {
		t.Errorf("got %v, want a CorruptError", err)
	}
}
