// pkg/core/types.go
package core

// WorldPoint is a position in the game's native 2D units.
// Points outside a site's bounds are valid and are never clamped.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenPoint is a position in normalized percent space.
// 0..100 covers the bounding region; values outside that range overflow the view.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the JSON shape of a bounding rectangle in world units.
type Bounds struct {
	MinX float64 `json:"minX" mapstructure:"minX"`
	MaxX float64 `json:"maxX" mapstructure:"maxX"`
	MinY float64 `json:"minY" mapstructure:"minY"`
	MaxY float64 `json:"maxY" mapstructure:"maxY"`
}

// AreaCount is one row of the legacy per-area position summary.
type AreaCount struct {
	Area       string  `json:"area"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
