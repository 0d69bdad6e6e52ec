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

package meshpdf

import (
	"errors"
	"math"
	"os"
	"slices"

	"github.com/google/uuid"
	"seehuhn.de/go/geom/vec"
)

// PlacementMode is the session's current placement tool. A mode is armed
// explicitly, consumed by exactly one placement, and reset to ModeNone.
type PlacementMode int

const (
	ModeNone PlacementMode = iota
	ModePlacingSignature
	ModePlacingText
)

var (
	// ErrUnknownOverlay reports an operation on an overlay id that is not
	// part of the session.
	ErrUnknownOverlay = errors.New("unknown overlay id")

	// ErrNoPendingSignature reports a signature placement without a
	// captured signature.
	ErrNoPendingSignature = errors.New("no signature has been captured")

	// ErrEmptyText reports a text placement with empty content.
	ErrEmptyText = errors.New("empty text")
)

// Session owns the overlays of one open document. The overlay collection
// is ordered; iteration order is insertion order and is stable across zoom
// changes, which keeps persisted output reproducible.
//
// Sessions are single-threaded by design. Long-running operations (reload,
// persist, print, merge) must hold the session token for their duration so
// that no two of them interleave; see Lock.
type Session struct {
	path     string
	overlays []*Overlay
	mode     PlacementMode
	pending  *SignatureAsset
	modified bool

	tok       chan struct{}
	mergeTemp string // merge output owned by this session, "" if none
}

// NewSession creates a session for the document at path.
func NewSession(path string) *Session {
	tok := make(chan struct{}, 1)
	tok <- struct{}{}
	return &Session{path: path, tok: tok}
}

// Path returns the current document path.
func (s *Session) Path() string { return s.path }

// SetPath replaces the current document path. Existing overlays are kept;
// the caller decides whether to re-anchor or clear them.
func (s *Session) SetPath(path string) { s.path = path }

// Lock acquires the session's exclusive token, blocking until it is free,
// and returns the release function. Reload, persist, print, and merge hold
// the token for their full duration.
func (s *Session) Lock() (release func()) {
	<-s.tok
	return func() { s.tok <- struct{}{} }
}

// ArmSignature enters signature placement mode with the captured asset.
func (s *Session) ArmSignature(a *SignatureAsset) {
	s.mode = ModePlacingSignature
	s.pending = a
}

// ArmText enters text placement mode.
func (s *Session) ArmText() {
	s.mode = ModePlacingText
	s.pending = nil
}

// Disarm leaves any placement mode without placing.
func (s *Session) Disarm() {
	s.mode = ModeNone
	s.pending = nil
}

// Mode returns the current placement mode.
func (s *Session) Mode() PlacementMode { return s.mode }

// PlaceSignature creates a signature overlay centered on the click point,
// anchored at the given zoom. If asset is nil the armed pending asset is
// used. Placement always resets the mode to ModeNone.
func (s *Session) PlaceSignature(page int, click vec.Vec2, asset *SignatureAsset, zoom float64) (*Overlay, error) {
	if asset == nil {
		asset = s.pending
	}
	s.Disarm()
	if asset == nil {
		return nil, ErrNoPendingSignature
	}

	o := &Overlay{
		id:    uuid.NewString(),
		kind:  Signature,
		page:  page,
		asset: asset,
	}
	w, h := asset.FitSize(roundInt(DesignWidth*zoom), roundInt(DesignHeight*zoom))
	// Center the signature on the click point, then store canonically.
	o.pos = vec.Vec2{
		X: (click.X - float64(w)/2) / zoom,
		Y: (click.Y - float64(h)/2) / zoom,
	}
	o.project(zoom)

	s.overlays = append(s.overlays, o)
	s.modified = true
	return o, nil
}

// PlaceText creates a text overlay with its top-left corner at the click
// point, anchored at the given zoom, with the default canonical font size.
// Placement always resets the mode to ModeNone.
func (s *Session) PlaceText(page int, click vec.Vec2, text string, zoom float64) (*Overlay, error) {
	s.Disarm()
	if text == "" {
		return nil, ErrEmptyText
	}

	o := &Overlay{
		id:       uuid.NewString(),
		kind:     Text,
		page:     page,
		text:     text,
		fontSize: DefaultFontSize,
		pos:      vec.Vec2{X: click.X / zoom, Y: click.Y / zoom},
	}
	o.project(zoom)

	s.overlays = append(s.overlays, o)
	s.modified = true
	return o, nil
}

// Move repositions an overlay, clamping it so that it stays fully within
// the page raster of the given pixel bounds. Position is the only state
// Move touches.
func (s *Session) Move(id string, to vec.Vec2, pageBounds vec.Vec2) error {
	o := s.find(id)
	if o == nil {
		return ErrUnknownOverlay
	}
	x := math.Round(clampf(to.X, 0, max(0, pageBounds.X-o.screenSize.X)))
	y := math.Round(clampf(to.Y, 0, max(0, pageBounds.Y-o.screenSize.Y)))
	o.screenPos = vec.Vec2{X: x, Y: y}
	o.pos = vec.Vec2{X: x / o.anchorZoom, Y: y / o.anchorZoom}
	return nil
}

// EditText replaces a text overlay's content. Position is untouched; the
// extent is re-measured at the current anchor zoom.
func (s *Session) EditText(id, text string) error {
	o := s.find(id)
	if o == nil || o.kind != Text {
		return ErrUnknownOverlay
	}
	if text == "" {
		return ErrEmptyText
	}
	o.text = text
	o.project(o.anchorZoom)
	return nil
}

// SetFontSize replaces a text overlay's canonical font size. The display
// size follows via re-projection at the current anchor zoom.
func (s *Session) SetFontSize(id string, size float64) error {
	o := s.find(id)
	if o == nil || o.kind != Text {
		return ErrUnknownOverlay
	}
	if size <= 0 {
		return errors.New("font size must be positive")
	}
	o.fontSize = size
	o.project(o.anchorZoom)
	return nil
}

// EditSignature replaces a signature overlay's source image. Position is
// untouched; the extent is re-derived from the design box.
func (s *Session) EditSignature(id string, asset *SignatureAsset) error {
	o := s.find(id)
	if o == nil || o.kind != Signature {
		return ErrUnknownOverlay
	}
	if asset == nil {
		return ErrNoPendingSignature
	}
	o.asset = asset
	o.project(o.anchorZoom)
	return nil
}

// Delete removes an overlay from the session.
func (s *Session) Delete(id string) error {
	for i, o := range s.overlays {
		if o.id == id {
			s.overlays = slices.Delete(s.overlays, i, i+1)
			return nil
		}
	}
	return ErrUnknownOverlay
}

// ListForPage returns the overlays of one page in insertion order.
func (s *Session) ListForPage(page int) []*Overlay {
	var out []*Overlay
	for _, o := range s.overlays {
		if o.page == page {
			out = append(out, o)
		}
	}
	return out
}

// Overlays returns all overlays in insertion order. The slice is a copy;
// the overlays are shared.
func (s *Session) Overlays() []*Overlay {
	return slices.Clone(s.overlays)
}

// Modified reports whether any overlay has ever been placed.
func (s *Session) Modified() bool { return s.modified }

// ClearOverlays drops all overlays. The save path calls this after a
// confirmed serialize; a failed save leaves the collection untouched so
// the user can retry.
func (s *Session) ClearOverlays() {
	s.overlays = nil
}

// AdoptTemp transfers ownership of a temporary file (the merge output) to
// the session. A previously owned file is superseded and deleted.
func (s *Session) AdoptTemp(path string) {
	if s.mergeTemp != "" && s.mergeTemp != path {
		os.Remove(s.mergeTemp)
	}
	s.mergeTemp = path
}

// Close releases session-owned resources, deleting any adopted temp file.
func (s *Session) Close() error {
	var err error
	if s.mergeTemp != "" {
		err = os.Remove(s.mergeTemp)
		s.mergeTemp = ""
	}
	return err
}

func (s *Session) find(id string) *Overlay {
	for _, o := range s.overlays {
		if o.id == id {
			return o
		}
	}
	return nil
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
