// Package ui holds the small immediate-mode widgets of the flock viewer.
package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is implemented by every control the panel lays out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	MoveTo(y float64)
}

// Section groups consecutive widgets under a header.
type Section struct {
	Title      string
	StartIndex int
	EndIndex   int // exclusive
}

// Panel stacks widgets vertically inside a scrollable box.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	Widgets       []Widget
	ScrollOffset  float64
	Hidden        bool

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []Section
}

func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 210},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, Section{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   len(p.Widgets),
	})
}

func (p *Panel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].EndIndex = len(p.Widgets)
	}
}

func (p *Panel) AddSlider(label string, min, max, value, step float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	s.Step = step
	s.Set(value)
	p.add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	p.Widgets = append(p.Widgets, w)
	p.EndSection()
	p.layout()
}

// layout positions every widget for the current scroll offset.
// Sliders get their label line above the bar.
func (p *Panel) layout() {
	y := p.Y + 30 - p.ScrollOffset
	next := 0
	for _, s := range p.sections {
		y += 25
		for ; next < s.EndIndex; next++ {
			w := p.Widgets[next]
			if _, ok := w.(*Slider); ok {
				w.MoveTo(y + 15)
			} else {
				w.MoveTo(y)
			}
			y += w.Height()
		}
	}
}

func (p *Panel) contentHeight() float64 {
	h := 30 + 25*float64(len(p.sections))
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

func (p *Panel) Update() {
	if p.Hidden {
		return
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		maxScroll := max(p.contentHeight()-p.Height+10, 0)
		p.ScrollOffset = min(max(p.ScrollOffset-dy*20, 0), maxScroll)
		p.layout()
	}
	for _, w := range p.Widgets {
		w.Update()
	}
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y+20 && y <= p.Y+p.Height-10
}

func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + 30 - p.ScrollOffset
	next := 0
	for _, s := range p.sections {
		if p.visible(y) {
			vector.FillRect(screen,
				float32(p.X+5), float32(y),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+10), int(y+2))
		}
		y += 25

		for ; next < s.EndIndex; next++ {
			w := p.Widgets[next]
			if p.visible(y) {
				drawLabel(screen, w, p.X+10, y)
				w.Draw(screen)
			}
			y += w.Height()
		}
	}
}

func drawLabel(screen *ebiten.Image, w Widget, x, y float64) {
	switch w := w.(type) {
	case *Slider:
		label := fmt.Sprintf("%s: %.2f", w.Label, w.Value)
		if w.Step >= 1 {
			label = fmt.Sprintf("%s: %d", w.Label, w.Int())
		}
		ebitenutil.DebugPrintAt(screen, label, int(x), int(y))
	case *Checkbox:
		ebitenutil.DebugPrintAt(screen, w.Label, int(x+w.Size+8), int(y))
	}
}
