package render

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when visual weight bounds are inverted or out of range
var ErrInvalidWeights = errors.New("invalid visual weight bounds")

// Weights bounds the stroke width (in percent units) and opacity of trajectory segments.
type Weights struct {
	MinStroke  float64
	MaxStroke  float64
	MinOpacity float64
	MaxOpacity float64
}

// DefaultWeights returns the stroke and opacity ranges used by the viewer.
func DefaultWeights() Weights {
	return Weights{MinStroke: 0.3, MaxStroke: 1.8, MinOpacity: 0.4, MaxOpacity: 0.8}
}

// Validate checks that each range is ordered and opacities are within [0, 1].
func (w Weights) Validate() error {
	if !(w.MinStroke >= 0 && w.MaxStroke >= w.MinStroke) {
		return fmt.Errorf("%w: stroke %g..%g", ErrInvalidWeights, w.MinStroke, w.MaxStroke)
	}
	if !(w.MinOpacity >= 0 && w.MaxOpacity >= w.MinOpacity && w.MaxOpacity <= 1) {
		return fmt.Errorf("%w: opacity %g..%g", ErrInvalidWeights, w.MinOpacity, w.MaxOpacity)
	}
	return nil
}

// at returns the stroke and opacity for a dwell ratio in [0, 1].
func (w Weights) at(ratio float64) (stroke, opacity float64) {
	return lerp(w.MinStroke, w.MaxStroke, ratio), lerp(w.MinOpacity, w.MaxOpacity, ratio)
}

// HeatmapParams controls blob size and color normalization.
type HeatmapParams struct {
	MinSize     float64
	ScaleFactor float64
	Ceiling     float64
}

// DefaultHeatmapParams returns the heatmap sizing used by the viewer.
func DefaultHeatmapParams() HeatmapParams {
	return HeatmapParams{MinSize: 30, ScaleFactor: 4, Ceiling: 30}
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

var (
	// LowTraffic is the heatmap color for rarely used areas
	LowTraffic = RGB{R: 59, G: 130, B: 246}
	// HighTraffic is the heatmap color at or above the ceiling
	HighTraffic = RGB{R: 239, G: 68, B: 68}
)

// HeatmapAlpha is the blob fill opacity
const HeatmapAlpha = 0.6

// LerpRGB interpolates each channel and rounds to the nearest integer.
func LerpRGB(from, to RGB, t float64) RGB {
	t = clamp01(t)
	ch := func(a, b uint8) uint8 {
		return uint8(math.Round(lerp(float64(a), float64(b), t)))
	}
	return RGB{R: ch(from.R, to.R), G: ch(from.G, to.G), B: ch(from.B, to.B)}
}

// CSS formats the color as an rgba() value
func (c RGB) CSS(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// Hex formats the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	switch {
	case math.IsNaN(t) || t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
