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

// Command meshpdf annotates, signs, and merges PDF documents from the
// command line.
//
// Usage:
//
//	meshpdf info file.pdf
//	meshpdf sign -page 1 -x 100 -y 500 -image sig.png in.pdf out.pdf
//	meshpdf text -page 1 -x 100 -y 100 -text "Approved" in.pdf out.pdf
//	meshpdf merge -o merged.pdf a.pdf b.pdf ...
//	meshpdf compose -o outdir file.pdf
//
// Coordinates are document points with the origin at the top-left corner
// of the page; pages are 1-based on the command line.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"seehuhn.de/go/geom/vec"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/composite"
	"github.com/coder5617/MeshPDF/config"
	"github.com/coder5617/MeshPDF/engine"
	"github.com/coder5617/MeshPDF/engine/pdfcpu"
	"github.com/coder5617/MeshPDF/merge"
	"github.com/coder5617/MeshPDF/viewport"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("meshpdf: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfgPath := os.Getenv("MESHPDF_CONFIG")
	if cfgPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgPath = filepath.Join(home, ".config", "meshpdf", "config.yaml")
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	eng := pdfcpu.New()

	switch os.Args[1] {
	case "info":
		err = cmdInfo(eng, os.Args[2:])
	case "sign":
		err = cmdSign(eng, cfg, os.Args[2:])
	case "text":
		err = cmdText(eng, cfg, os.Args[2:])
	case "merge":
		err = cmdMerge(eng, os.Args[2:])
	case "compose":
		err = cmdCompose(eng, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  meshpdf info file.pdf
  meshpdf sign -page N -x X -y Y -image sig.png in.pdf out.pdf
  meshpdf text -page N -x X -y Y -text "..." in.pdf out.pdf
  meshpdf merge -o out.pdf file.pdf...
  meshpdf compose -o dir file.pdf`)
}

// cmdCompose renders each page's print composite as a PNG at the
// configured render scale.
func cmdCompose(eng engine.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	out := fs.String("o", ".", "output directory")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("compose: expected one file")
	}
	path := fs.Arg(0)

	sess := meshpdf.NewSession(path)
	defer sess.Close()

	view := viewport.New(eng, sess, cfg.Render.Scale)
	if err := view.Load(false); err != nil {
		return err
	}

	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]

	for i, page := range view.Pages() {
		comp, err := composite.ComposePage(page, sess.ListForPage(i))
		if err != nil {
			return fmt.Errorf("compositing page %d: %w", i+1, err)
		}
		name := filepath.Join(*out, fmt.Sprintf("%s-%03d.png", stem, i+1))
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := png.Encode(f, comp); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %d pages to %s\n", len(view.Pages()), *out)
	return nil
}

func cmdInfo(eng engine.Engine, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected one file")
	}
	path := fs.Arg(0)

	h, err := eng.Open(path)
	if err != nil {
		return err
	}
	defer eng.Close(h)

	n := eng.PageCount(h)
	fmt.Printf("%s: %d pages\n", filepath.Base(path), n)
	for i := range n {
		size, err := eng.PageSize(h, i)
		if err != nil {
			return err
		}
		fmt.Printf("  page %d: %.1f × %.1f pt\n", i+1, size.Width, size.Height)
	}
	return nil
}

// cmdSign centers a signature image on the given point and writes the
// annotated document. The session runs at zoom 1 with a unit render
// multiplier, so command-line coordinates are document points directly.
func cmdSign(eng engine.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	page := fs.Int("page", 1, "1-based page number")
	x := fs.Float64("x", 0, "center x in points")
	y := fs.Float64("y", 0, "center y in points")
	imgPath := fs.String("image", "", "PNG image of the signature")
	fs.Parse(args)
	if fs.NArg() != 2 || *imgPath == "" {
		return fmt.Errorf("sign: expected -image plus input and output files")
	}

	f, err := os.Open(*imgPath)
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", *imgPath, err)
	}

	sess := meshpdf.NewSession(fs.Arg(0))
	defer sess.Close()

	asset := meshpdf.NewSignatureAsset(img)
	if _, err := sess.PlaceSignature(*page-1, vec.Vec2{X: *x, Y: *y}, asset, 1.0); err != nil {
		return err
	}
	return persist(eng, sess, cfg.Text.Font, fs.Arg(1))
}

func cmdText(eng engine.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	page := fs.Int("page", 1, "1-based page number")
	x := fs.Float64("x", 0, "left edge in points")
	y := fs.Float64("y", 0, "top edge in points")
	text := fs.String("text", "", "annotation text")
	size := fs.Float64("size", meshpdf.DefaultFontSize, "font size in points")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("text: expected input and output files")
	}

	sess := meshpdf.NewSession(fs.Arg(0))
	defer sess.Close()

	o, err := sess.PlaceText(*page-1, vec.Vec2{X: *x, Y: *y}, *text, 1.0)
	if err != nil {
		return err
	}
	if *size != meshpdf.DefaultFontSize {
		if err := sess.SetFontSize(o.ID(), *size); err != nil {
			return err
		}
	}
	return persist(eng, sess, cfg.Text.Font, fs.Arg(1))
}

func persist(eng engine.Engine, sess *meshpdf.Session, font, outPath string) error {
	res, err := composite.Persist(eng, sess, 1.0, font, outPath)
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d overlays could not be written",
			len(res.Failed), res.Applied+len(res.Failed))
	}
	fmt.Printf("wrote %s (%d overlays)\n", outPath, res.Applied)
	return nil
}

func cmdMerge(eng engine.Engine, args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	out := fs.String("o", "merged.pdf", "output file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("merge: expected at least one input file")
	}

	res, err := merge.Merge(eng, fs.Args())
	if err != nil {
		return err
	}
	defer os.Remove(res.Path)

	if err := os.Rename(res.Path, *out); err != nil {
		// Cross-device rename; fall back to a copy.
		data, rerr := os.ReadFile(res.Path)
		if rerr != nil {
			return err
		}
		if werr := os.WriteFile(*out, data, 0o644); werr != nil {
			return werr
		}
	}

	fmt.Printf("wrote %s (%d pages from %d files", *out, res.Pages, len(res.Merged))
	if len(res.Skipped) > 0 {
		fmt.Printf(", skipped %d", len(res.Skipped))
	}
	fmt.Println(")")
	return nil
}
