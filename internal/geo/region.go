package geo

import (
	"github.com/csdemo/siteview/pkg/core"
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Region is a non-degenerate bounding rectangle in world units.
type Region struct {
	rect r2.Rect
}

// NewRegion validates and builds a region. Each axis needs max > min.
func NewRegion(minX, maxX, minY, maxY float64) (Region, error) {
	if !(maxX > minX) || !isFinite(minX) || !isFinite(maxX) {
		return Region{}, &ConfigurationError{Axis: "x", Min: minX, Max: maxX}
	}
	if !(maxY > minY) || !isFinite(minY) || !isFinite(maxY) {
		return Region{}, &ConfigurationError{Axis: "y", Min: minY, Max: maxY}
	}
	return Region{rect: r2.Rect{
		X: r1.Interval{Lo: minX, Hi: maxX},
		Y: r1.Interval{Lo: minY, Hi: maxY},
	}}, nil
}

// RegionFromBounds builds a region from its JSON shape.
func RegionFromBounds(b core.Bounds) (Region, error) {
	return NewRegion(b.MinX, b.MaxX, b.MinY, b.MaxY)
}

// Contains reports whether p lies inside the region, edges included.
func (r Region) Contains(p core.WorldPoint) bool {
	return r.rect.ContainsPoint(r2.Point{X: p.X, Y: p.Y})
}

// Projection maps world points of one map site into screen percent space.
type Projection struct {
	Region  Region
	InvertX bool
	InvertY bool
}

// Project maps a world point. Points outside the region overflow 0..100.
func (p Projection) Project(w core.WorldPoint) (core.ScreenPoint, error) {
	x, err := MapToPercent(w.X, p.Region.rect.X.Lo, p.Region.rect.X.Hi, p.InvertX)
	if err != nil {
		return core.ScreenPoint{}, withAxis(err, "x")
	}
	y, err := MapToPercent(w.Y, p.Region.rect.Y.Lo, p.Region.rect.Y.Hi, p.InvertY)
	if err != nil {
		return core.ScreenPoint{}, withAxis(err, "y")
	}
	return core.ScreenPoint{X: x, Y: y}, nil
}

// ProjectAll maps points in order.
func (p Projection) ProjectAll(points []core.WorldPoint) ([]core.ScreenPoint, error) {
	out := make([]core.ScreenPoint, 0, len(points))
	for _, w := range points {
		s, err := p.Project(w)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func withAxis(err error, axis string) error {
	if ce, ok := err.(*ConfigurationError); ok && ce.Axis == "" {
		return &ConfigurationError{Axis: axis, Min: ce.Min, Max: ce.Max}
	}
	return err
}
