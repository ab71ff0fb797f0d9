package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox toggles a boolean on click. OnChange, if set, runs after every toggle.
type Checkbox struct {
	Label    string
	Value    bool
	X, Y     float64
	Size     float64
	OnChange func(bool)
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16,
	}
}

func (c *Checkbox) hovered() bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= c.X && float64(mx) <= c.X+c.Size &&
		float64(my) >= c.Y && float64(my) <= c.Y+c.Size
}

// Update toggles once per press, not once per frame the button is held.
func (c *Checkbox) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && c.hovered() {
		c.Toggle()
	}
}

// Toggle flips the value as a click would.
func (c *Checkbox) Toggle() {
	c.Value = !c.Value
	if c.OnChange != nil {
		c.OnChange(c.Value)
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}
}

func (c *Checkbox) Height() float64 {
	return c.Size + 20 // box + label
}

func (c *Checkbox) MoveTo(y float64) {
	c.Y = y
}
