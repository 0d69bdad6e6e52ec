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

// Package viewport owns the zoom state of a document session and the
// currently rendered page rasters. A zoom change re-anchors all overlays
// into the new screen space, re-rasterizes every page at
// base multiplier × zoom, and restores the scroll position by fraction.
package viewport

import (
	"fmt"
	"image"
	"sync"

	"seehuhn.de/go/geom/vec"

	meshpdf "github.com/coder5617/MeshPDF"
	"github.com/coder5617/MeshPDF/engine"
)

// ScrollState is one axis of a scroll bar: the current offset and the
// scrollable range, both in arbitrary but consistent units.
type ScrollState struct {
	Offset, Range float64
}

// Fraction is the relative scroll position. A zero or negative range maps
// to 0.
func (s ScrollState) Fraction() float64 {
	if s.Range <= 0 {
		return 0
	}
	return s.Offset / s.Range
}

// ScrollPort is the presentation shell's scroll bars. Ranges reported
// after a reload must reflect the new layout.
type ScrollPort interface {
	HScroll() ScrollState
	VScroll() ScrollState
	SetOffsets(h, v float64)
}

// Controller drives rendering for one document session. It owns the
// current zoom factor and the page rasters; all zoom mutation goes through
// SetZoom/SetZoomTo/ResetZoom.
//
// Reloads hold the session's exclusive token. A zoom change requested
// while a reload is in flight is coalesced: only the latest requested zoom
// is applied, so a stale scroll restoration can never land.
type Controller struct {
	eng  engine.Engine
	sess *meshpdf.Session
	base float64 // fixed render quality multiplier

	scroll ScrollPort
	onZoom []func(float64)

	mu        sync.Mutex
	zoom      float64
	pages     []*image.RGBA
	pageSizes []engine.Size
	reloading bool
	pending   *float64 // queued target zoom, last request wins
}

// New creates a controller with zoom 1.0. base is the fixed resolution
// quality factor (the original uses 2.0); it never changes during a
// session.
func New(eng engine.Engine, sess *meshpdf.Session, base float64) *Controller {
	return &Controller{
		eng:  eng,
		sess: sess,
		base: base,
		zoom: 1.0,
	}
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Base returns the fixed render multiplier.
func (c *Controller) Base() float64 { return c.base }

// Pages returns the current page rasters, in page order.
func (c *Controller) Pages() []*image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages
}

// PageSizes returns the native page sizes in points.
func (c *Controller) PageSizes() []engine.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSizes
}

// PageBounds returns the pixel extent of a page's current raster, the
// clamping bounds for overlay dragging.
func (c *Controller) PageBounds(page int) vec.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 0 || page >= len(c.pages) {
		return vec.Vec2{}
	}
	b := c.pages[page].Rect
	return vec.Vec2{X: float64(b.Dx()), Y: float64(b.Dy())}
}

// SetScrollPort attaches the shell's scroll bars for position restoration.
func (c *Controller) SetScrollPort(p ScrollPort) { c.scroll = p }

// OnZoomChanged registers an observer notified with the new factor after
// every effective zoom change (e.g. a percentage readout).
func (c *Controller) OnZoomChanged(fn func(float64)) {
	c.onZoom = append(c.onZoom, fn)
}

// Load opens the session's document and rasterizes all pages at the
// current zoom. With preserveOverlays set, existing overlays are
// re-anchored into the new render (overlays on pages beyond the new page
// count are dropped); otherwise the overlay collection is cleared.
func (c *Controller) Load(preserveOverlays bool) error {
	release := c.sess.Lock()
	defer release()

	c.mu.Lock()
	z := c.zoom
	c.mu.Unlock()
	return c.reload(z, preserveOverlays)
}

// SetZoom multiplies the current zoom by factor, clamped to
// [meshpdf.MinZoom, meshpdf.MaxZoom], and reloads if the clamped value
// differs from the current one.
func (c *Controller) SetZoom(factor float64) error {
	c.mu.Lock()
	z := c.zoom
	c.mu.Unlock()
	return c.SetZoomTo(z * factor)
}

// ResetZoom returns to 100%.
func (c *Controller) ResetZoom() error {
	return c.SetZoomTo(1.0)
}

// SetZoomTo sets an absolute zoom level, clamped. Requests arriving while
// a reload is in flight replace any queued request; only the newest target
// is applied.
func (c *Controller) SetZoomTo(z float64) error {
	target := meshpdf.ClampZoom(z)

	c.mu.Lock()
	if target == c.zoom && c.pending == nil {
		c.mu.Unlock()
		return nil
	}
	if c.reloading {
		c.pending = &target
		c.mu.Unlock()
		return nil
	}
	c.reloading = true
	c.mu.Unlock()

	var err error
	for {
		err = c.applyZoom(target)

		c.mu.Lock()
		if c.pending == nil {
			c.reloading = false
			c.mu.Unlock()
			return err
		}
		next := *c.pending
		c.pending = nil
		if next == c.zoom {
			c.reloading = false
			c.mu.Unlock()
			return err
		}
		c.mu.Unlock()
		target = next
	}
}

// applyZoom performs one zoom transition: capture scroll fractions,
// re-anchor and re-rasterize at the target, restore scroll position
// against the new ranges. A failed reload leaves the zoom, the rasters
// and the overlays at their previous values.
func (c *Controller) applyZoom(target float64) error {
	var hFrac, vFrac float64
	if c.scroll != nil {
		hFrac = c.scroll.HScroll().Fraction()
		vFrac = c.scroll.VScroll().Fraction()
	}

	release := c.sess.Lock()
	defer release()

	if err := c.reload(target, true); err != nil {
		return err
	}

	for _, fn := range c.onZoom {
		fn(target)
	}
	if c.scroll != nil {
		h := hFrac * c.scroll.HScroll().Range
		v := vFrac * c.scroll.VScroll().Range
		c.scroll.SetOffsets(h, v)
	}
	return nil
}

// reload opens a fresh handle and rebuilds the rendered state for zoom z:
// page rasters at base × z, page sizes, re-anchored overlays. The new
// state is committed together and only once every page has rendered, so
// the zoom factor, the rasters and the overlay coordinates always
// describe the same screen space. The caller holds the session token.
func (c *Controller) reload(z float64, preserveOverlays bool) error {
	h, err := c.eng.Open(c.sess.Path())
	if err != nil {
		c.mu.Lock()
		c.pages = nil
		c.pageSizes = nil
		c.mu.Unlock()
		return fmt.Errorf("loading %s: %w", c.sess.Path(), err)
	}
	defer c.eng.Close(h)

	n := c.eng.PageCount(h)
	pages := make([]*image.RGBA, n)
	sizes := make([]engine.Size, n)
	mult := c.base * z
	for i := range n {
		sizes[i], err = c.eng.PageSize(h, i)
		if err != nil {
			return fmt.Errorf("page %d size: %w", i, err)
		}
		raster, err := c.eng.Rasterize(h, i, mult)
		if err != nil {
			return fmt.Errorf("rasterizing page %d: %w", i, err)
		}
		pages[i] = raster.Image()
	}

	if preserveOverlays {
		c.sess.Reanchor(z, n)
	} else {
		c.sess.ClearOverlays()
	}
	c.mu.Lock()
	c.zoom = z
	c.pages = pages
	c.pageSizes = sizes
	c.mu.Unlock()
	return nil
}
