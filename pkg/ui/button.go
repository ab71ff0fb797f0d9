package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per mouse press inside its bounds.
type Button struct {
	Label   string
	X, Y    float64
	W       float64
	H       float64
	OnClick func()

	BGColor    color.RGBA
	HoverColor color.RGBA
}

func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		W:          width,
		H:          height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) hovered() bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= b.X && float64(mx) <= b.X+b.W &&
		float64(my) >= b.Y && float64(my) <= b.Y+b.H
}

func (b *Button) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && b.hovered() && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if b.hovered() {
		bg = b.HoverColor
	}
	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		bg, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	// debug font glyphs are 6px wide, 16px tall
	tx := b.X + (b.W-float64(6*len(b.Label)))/2
	ty := b.Y + (b.H-16)/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(tx), int(ty))
}

func (b *Button) Height() float64 {
	return b.H + 8
}

func (b *Button) MoveTo(y float64) {
	b.Y = y
}
