// Package render projects a flock onto a square RGBA pixel buffer.
package render

import (
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// View selects which plane of the volume is drawn.
type View int

const (
	// ViewSide draws the x/z plane; grey encodes depth y.
	ViewSide View = iota
	// ViewTop draws the x/y plane; grey encodes altitude z.
	ViewTop
)

// ViewFor returns ViewTop when top is set and ViewSide otherwise.
func ViewFor(top bool) View {
	if top {
		return ViewTop
	}
	return ViewSide
}

func (v View) String() string {
	if v == ViewTop {
		return "top"
	}
	return "side"
}

// edgeMargin is how close to a drawn edge a boid may get before it is skipped.
const edgeMargin = 2

// Projector owns a Size×Size RGBA buffer (4 bytes per pixel) that is
// rewritten on every call to Project.
type Projector struct {
	Size   int
	View   View
	pixels []byte
}

func NewProjector(size int, view View) *Projector {
	return &Projector{
		Size:   size,
		View:   view,
		pixels: make([]byte, 4*size*size),
	}
}

// Pixels returns the buffer filled by the last Project call.
func (p *Projector) Pixels() []byte {
	return p.pixels
}

// Project clears the buffer to opaque black and plots one grey pixel per boid.
// It returns the number of boids drawn.
func (p *Projector) Project(boids []simulation.Boid) int {
	for i := 0; i < len(p.pixels); i += 4 {
		p.pixels[i] = 0
		p.pixels[i+1] = 0
		p.pixels[i+2] = 0
		p.pixels[i+3] = 0xff
	}

	drawn := 0
	for _, b := range boids {
		col, row, depth, ok := p.locate(b)
		if !ok {
			continue
		}
		g := grey(depth, p.Size)
		i := 4 * (row*p.Size + col)
		p.pixels[i] = g
		p.pixels[i+1] = g
		p.pixels[i+2] = g
		drawn++
	}
	return drawn
}

// locate maps a boid to its pixel and depth coordinate for the current view.
func (p *Projector) locate(b simulation.Boid) (col, row int, depth float32, ok bool) {
	if !b.Position.IsFinite() {
		return 0, 0, 0, false
	}
	var u, v float32
	switch p.View {
	case ViewTop:
		u, v, depth = b.Position.X, b.Position.Y, b.Position.Z
	default:
		u, v, depth = b.Position.X, b.Position.Z, b.Position.Y
	}

	limit := float32(p.Size) - edgeMargin
	if u < edgeMargin || v < edgeMargin || u >= limit || v >= limit || depth < 0 {
		return 0, 0, 0, false
	}
	return int(u), int(v), depth, true
}

func grey(depth float32, size int) byte {
	g := depth * (255 / float32(size))
	if g > 255 {
		return 255
	}
	return byte(g)
}
