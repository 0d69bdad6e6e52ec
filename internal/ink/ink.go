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

// Package ink draws fixed-width, round-capped, anti-aliased line segments
// into an alpha-channel canvas. It is the rasteriser behind the signature
// pad: each pointer sample pair becomes a capsule (a rectangle with
// semicircular ends) whose pixel coverage is accumulated scanline by
// scanline and composited source-over onto the canvas.
package ink

import (
	"image"
	"image/color"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// edge is a polygon edge in canvas coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0), precomputed for x-intercept calculation
}

// Pen rasterises ink strokes. The caller creates one instance per canvas
// and reuses it for all segments; internal buffers grow as needed but never
// shrink.
type Pen struct {
	// Clip is the drawable region in canvas coordinates.
	// Must have integer-aligned, non-empty bounds.
	Clip rect.Rect

	// Width is the stroke width in pixels. Must be > 0.
	Width float64

	// Color is the ink color. Alpha is straight (not premultiplied).
	Color color.NRGBA

	poly      []vec.Vec2 // capsule outline for the current segment
	edges     []edge
	cover     []float32 // per-pixel cover change within the bounding box
	area      []float32 // per-pixel area contribution within the bounding box
	crossings []float64 // y values where an edge crosses pixel boundaries

	bboxFirst                  bool
	xMinF, xMaxF, yMinF, yMaxF float64
}

// NewPen returns a Pen with the given clip region, stroke width, and color.
func NewPen(clip rect.Rect, width float64, col color.NRGBA) *Pen {
	return &Pen{
		Clip:  clip,
		Width: width,
		Color: col,
	}
}

// Segment draws an anti-aliased capsule from a to b onto dst.
// Zero-length segments degenerate to a round dot.
func (p *Pen) Segment(dst *image.NRGBA, a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		p.Dot(dst, a)
		return
	}
	t := d.Mul(1 / length)
	n := vec.Vec2{X: -t.Y, Y: t.X} // 90° CCW from t
	r := p.Width / 2

	// Capsule outline: side a→b on the +n side, semicircle around b,
	// side b→a on the -n side, semicircle around a.
	p.poly = p.poly[:0]
	p.poly = append(p.poly, a.Add(n.Mul(r)), b.Add(n.Mul(r)))
	p.addArc(b, r, n, math.Pi)
	p.poly = append(p.poly, b.Sub(n.Mul(r)), a.Sub(n.Mul(r)))
	p.addArc(a, r, n.Mul(-1), math.Pi)

	p.fill(dst)
}

// Dot draws a filled anti-aliased circle of the pen width centered at c.
// Used for a press without movement.
func (p *Pen) Dot(dst *image.NRGBA, c vec.Vec2) {
	r := p.Width / 2
	p.poly = p.poly[:0]
	p.addArc(c, r, vec.Vec2{X: 1, Y: 0}, 2*math.Pi)
	p.fill(dst)
}

// addArc appends points approximating a circular arc around center c,
// starting in direction from (a unit vector) and sweeping CCW by sweep
// radians. The chord error stays below arcFlatness pixels.
func (p *Pen) addArc(c vec.Vec2, radius float64, from vec.Vec2, sweep float64) {
	var step float64
	if radius > arcFlatness {
		step = 2 * math.Acos(1-arcFlatness/radius)
	} else {
		step = math.Pi / 4
	}
	n := int(math.Ceil(sweep / step))
	if n < 4 {
		n = 4
	}
	for i := 0; i <= n; i++ {
		phi := sweep * float64(i) / float64(n)
		sin, cos := math.Sincos(phi)
		dir := vec.Vec2{
			X: from.X*cos - from.Y*sin,
			Y: from.X*sin + from.Y*cos,
		}
		p.poly = append(p.poly, c.Add(dir.Mul(radius)))
	}
}

// fill rasterises the closed polygon in p.poly and composites it onto dst.
func (p *Pen) fill(dst *image.NRGBA) {
	p.collectEdges()
	if len(p.edges) == 0 {
		return
	}

	// Bounding box, clamped to the clip region.
	xMin := max(int(math.Floor(p.xMinF)), int(p.Clip.LLx))
	xMax := min(int(math.Floor(p.xMaxF))+1, int(p.Clip.URx))
	yMin := max(int(math.Floor(p.yMinF)), int(p.Clip.LLy))
	yMax := min(int(math.Floor(p.yMaxF))+1, int(p.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin
	height := yMax - yMin

	size := width * height
	p.cover = grow(p.cover, size)
	p.area = grow(p.area, size)

	for i := range p.edges {
		e := &p.edges[i]

		var eyMin, eyMax int
		if e.y0 < e.y1 {
			eyMin = int(math.Floor(e.y0))
			eyMax = int(math.Floor(e.y1)) + 1
		} else {
			eyMin = int(math.Floor(e.y1))
			eyMax = int(math.Floor(e.y0)) + 1
		}
		eyMin = max(eyMin, yMin)
		eyMax = min(eyMax, yMax)

		for y := eyMin; y < eyMax; y++ {
			row := (y - yMin) * width
			p.accumulate(e, y, p.cover[row:row+width], p.area[row:row+width], xMin, xMax)
		}
	}

	for row := range height {
		p.blendScanline(dst, yMin+row, xMin, p.cover[row*width:(row+1)*width], p.area[row*width:(row+1)*width])
	}
}

// collectEdges converts p.poly into the edge list and computes its
// bounding box. Horizontal edges contribute no coverage and are skipped.
func (p *Pen) collectEdges() {
	p.edges = p.edges[:0]
	p.bboxFirst = true

	n := len(p.poly)
	for i := range n {
		a := p.poly[i]
		b := p.poly[(i+1)%n]

		dy := b.Y - a.Y
		if dy > -horizontalThreshold && dy < horizontalThreshold {
			continue
		}
		p.edges = append(p.edges, edge{
			x0: a.X, y0: a.Y,
			x1: b.X, y1: b.Y,
			dxdy: (b.X - a.X) / dy,
		})
		if p.bboxFirst {
			p.xMinF, p.xMaxF = min(a.X, b.X), max(a.X, b.X)
			p.yMinF, p.yMaxF = min(a.Y, b.Y), max(a.Y, b.Y)
			p.bboxFirst = false
		} else {
			p.xMinF = min(p.xMinF, min(a.X, b.X))
			p.xMaxF = max(p.xMaxF, max(a.X, b.X))
			p.yMinF = min(p.yMinF, min(a.Y, b.Y))
			p.yMaxF = max(p.yMaxF, max(a.Y, b.Y))
		}
	}
}

// accumulate adds one edge's contribution to the cover and area buffers for
// scanline y. cover holds the signed vertical extent of the edge within
// each pixel column; area weights it by how far left within the pixel the
// crossing happens. Integrating cover left to right and adding area yields
// the signed area of the polygon within each pixel.
func (p *Pen) accumulate(e *edge, y int, cover, area []float32, bboxXMin, bboxXMax int) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xAtTop := e.x0 + e.dxdy*(yTop-e.y0)
	xAtBot := e.x0 + e.dxdy*(yBot-e.y0)
	xLeft, xRight := xAtTop, xAtBot
	if xLeft > xRight {
		xLeft, xRight = xRight, xLeft
	}
	pixLeft := int(math.Floor(xLeft))
	pixRight := int(math.Floor(xRight))

	if pixRight < bboxXMin {
		// Entirely left of the box: full cover carried into column 0.
		v := sign * float32(yBot-yTop)
		cover[0] += v
		area[0] += v
		return
	}
	if pixLeft >= bboxXMax {
		return
	}

	if pixLeft == pixRight {
		p.deposit(e, yTop, yBot, sign, pixLeft, cover, area, bboxXMin, bboxXMax)
		return
	}

	// The edge crosses pixel boundaries within this scanline; split it at
	// each integer x and deposit the pieces separately.
	dydx := 1 / e.dxdy
	p.crossings = p.crossings[:0]
	p.crossings = append(p.crossings, yTop, yBot)
	for x := pixLeft + 1; x <= pixRight; x++ {
		yAtX := e.y0 + dydx*(float64(x)-e.x0)
		if yAtX > yTop && yAtX < yBot {
			p.crossings = append(p.crossings, yAtX)
		}
	}
	sortFloats(p.crossings)

	for i := range len(p.crossings) - 1 {
		y0, y1 := p.crossings[i], p.crossings[i+1]
		if y1 <= y0 {
			continue
		}
		yMid := (y0 + y1) / 2
		xMid := e.x0 + e.dxdy*(yMid-e.y0)
		pix := int(math.Floor(xMid))
		v := sign * float32(y1-y0)
		switch {
		case pix < bboxXMin:
			cover[0] += v
			area[0] += v
		case pix < bboxXMax:
			idx := pix - bboxXMin
			cover[idx] += v
			area[idx] += v * float32(1-(xMid-float64(pix)))
		}
	}
}

// deposit handles an edge piece confined to a single pixel column.
func (p *Pen) deposit(e *edge, yTop, yBot float64, sign float32, pix int, cover, area []float32, bboxXMin, bboxXMax int) {
	v := sign * float32(yBot-yTop)
	if pix < bboxXMin {
		cover[0] += v
		area[0] += v
		return
	}
	if pix >= bboxXMax {
		return
	}
	yMid := (yTop + yBot) / 2
	xMid := e.x0 + e.dxdy*(yMid-e.y0)
	idx := pix - bboxXMin
	cover[idx] += v
	area[idx] += v * float32(1-(xMid-float64(pix)))
}

// blendScanline integrates one scanline's cover/area (nonzero rule) and
// composites the resulting coverage source-over onto dst.
func (p *Pen) blendScanline(dst *image.NRGBA, y, xMin int, cover, area []float32) {
	var accum float32
	srcA := float64(p.Color.A) / 255
	for i := range cover {
		raw := accum + area[i]
		accum += cover[i]

		c := raw
		if c < 0 {
			c = -c
		}
		if c > 1 {
			c = 1
		}
		if c == 0 {
			continue
		}
		p.blendPixel(dst, xMin+i, y, float64(c)*srcA)
	}
}

// blendPixel composites the pen color onto dst at (x, y) with the given
// effective straight alpha in [0, 1].
func (p *Pen) blendPixel(dst *image.NRGBA, x, y int, sa float64) {
	if !(image.Point{X: x, Y: y}.In(dst.Rect)) {
		return
	}
	off := dst.PixOffset(x, y)
	pix := dst.Pix[off : off+4 : off+4]

	da := float64(pix[3]) / 255
	outA := sa + da*(1-sa)
	if outA <= 0 {
		return
	}
	blend := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / outA
		return uint8(math.Round(v))
	}
	pix[0] = blend(p.Color.R, pix[0])
	pix[1] = blend(p.Color.G, pix[1])
	pix[2] = blend(p.Color.B, pix[2])
	pix[3] = uint8(math.Round(outA * 255))
}

func grow(buf []float32, size int) []float32 {
	if cap(buf) < size {
		buf = make([]float32, size)
	} else {
		buf = buf[:size]
		clear(buf)
	}
	return buf
}

// sortFloats is insertion sort; crossing lists are tiny.
func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

const (
	// arcFlatness is the chord error tolerance for arc tessellation, in
	// pixels. 0.25 is below the threshold of visual perception.
	arcFlatness = 0.25

	// horizontalThreshold is the minimum vertical extent for an edge to
	// contribute coverage.
	horizontalThreshold = 1e-10

	// zeroLengthThreshold is the minimum segment length; shorter segments
	// are drawn as dots.
	zeroLengthThreshold = 1e-10
)
