package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider selects a value in [Min, Max] by dragging.
// With Step > 0 the value snaps to multiples of Step above Min.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider with the default bar height.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     12,
	}
	s.Set(value)
	return s
}

// Set stores v clamped to the slider range and snapped to Step.
func (s *Slider) Set(v float64) {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	s.Value = math.Max(s.Min, math.Min(s.Max, v))
}

// Int returns the value rounded to the nearest integer.
func (s *Slider) Int() int {
	return int(math.Round(s.Value))
}

func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= s.X && float64(mx) <= s.X+s.W &&
		float64(my) >= s.Y && float64(my) <= s.Y+s.H {
		p := (float64(mx) - s.X) / s.W
		s.Set(s.Min + p*(s.Max-s.Min))
	}
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) Height() float64 {
	return s.H + 25 // bar + label
}

func (s *Slider) MoveTo(y float64) {
	s.Y = y
}
