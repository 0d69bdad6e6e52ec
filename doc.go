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

// Package meshpdf places freehand signatures and text annotations onto
// rendered pages of a PDF document and writes them back out, either into
// the document's resolution-independent point space (saving) or onto a
// rasterized page composite (printing).
//
// The package keeps three coordinate spaces consistent while the user
// changes zoom: canonical space (zoom = 1 pixels), the current screen
// raster (base multiplier × zoom pixels), and output space (document
// points or printer device pixels). Overlays store their position
// canonically; screen geometry is a cache that is re-derived, not merely
// redrawn, on every zoom change.
package meshpdf
