package geo

import (
	"fmt"

	"github.com/csdemo/siteview/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ScreenPath converts mapped points into a line string in percent space.
func ScreenPath(points []core.ScreenPoint) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("path must have at least 2 points, got %d", len(points))
	}

	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.X, p.Y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid screen path: %w", err)
	}
	return ls, nil
}

// PathLength returns the polyline length in percent units; 0 for fewer than two
// distinct points.
func PathLength(points []core.ScreenPoint) float64 {
	ls, err := ScreenPath(points)
	if err != nil {
		return 0
	}
	return ls.Length()
}
