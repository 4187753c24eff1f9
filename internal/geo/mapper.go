package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/csdemo/siteview/pkg/core"
)

// ErrDegenerateRegion is returned when an axis of a bounding region has no extent
var ErrDegenerateRegion = errors.New("degenerate bounding region")

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ConfigurationError reports a bounding region that cannot be mapped to screen space.
type ConfigurationError struct {
	Axis string
	Min  float64
	Max  float64
}

func (e *ConfigurationError) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("min=%g max=%g: %s", e.Min, e.Max, ErrDegenerateRegion)
	}
	return fmt.Sprintf("%s axis: min=%g max=%g: %s", e.Axis, e.Min, e.Max, ErrDegenerateRegion)
}

// Unwrap lets callers match with errors.Is(err, ErrDegenerateRegion).
func (e *ConfigurationError) Unwrap() error {
	return ErrDegenerateRegion
}

// MapToPercent maps value within [min,max] to 0..100, optionally inverted.
// Values outside the range are not clamped. A range with no extent is a
// configuration error and never yields Inf or NaN.
func MapToPercent(value, min, max float64, invert bool) (float64, error) {
	if max == min || !isFinite(min) || !isFinite(max) {
		return 0, &ConfigurationError{Min: min, Max: max}
	}
	result := ((value - min) / (max - min)) * 100
	if invert {
		return 100 - result, nil
	}
	return result, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// WorldPointFromString parses a string in the format "x,y" into a world point.
func WorldPointFromString(coords string) (core.WorldPoint, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.WorldPoint{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil || !isFinite(x) {
		return core.WorldPoint{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil || !isFinite(y) {
		return core.WorldPoint{}, ErrInvalidCoordinates
	}
	return core.WorldPoint{X: x, Y: y}, nil
}
