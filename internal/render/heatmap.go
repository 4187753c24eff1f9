package render

import (
	"math"

	"github.com/csdemo/siteview/internal/geo"
	"github.com/csdemo/siteview/pkg/core"
)

// AreaLookup resolves an area label to its representative world coordinate.
type AreaLookup interface {
	AreaCenter(label string) (core.WorldPoint, bool)
}

// HeatmapEntry is the traffic of one area.
type HeatmapEntry struct {
	Area       string  `json:"area"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Blob is one plotted area. Size is a diameter in canvas units.
type Blob struct {
	Area       string           `json:"area"`
	At         core.ScreenPoint `json:"at"`
	Size       float64          `json:"size"`
	Color      RGB              `json:"-"`
	Fill       string           `json:"fill"`
	Count      int              `json:"count"`
	Percentage float64          `json:"percentage"`
}

// Heatmap is the plotted areas plus the labels that had no known location.
type Heatmap struct {
	Blobs   []Blob   `json:"blobs"`
	Skipped []string `json:"skipped"`
}

// EntriesFromStats derives heatmap entries from aggregate position stats.
func EntriesFromStats(stats []core.AreaAggregateStat) []HeatmapEntry {
	out := make([]HeatmapEntry, 0, len(stats))
	for _, s := range stats {
		out = append(out, HeatmapEntry{Area: s.Area, Count: s.TotalOccurrences, Percentage: s.OverallFrequency * 100})
	}
	return out
}

// EntriesFromPositions uses the legacy position summary as is.
func EntriesFromPositions(positions []core.AreaCount) []HeatmapEntry {
	out := make([]HeatmapEntry, 0, len(positions))
	for _, p := range positions {
		out = append(out, HeatmapEntry(p))
	}
	return out
}

// BuildHeatmap places one blob per known area. Unknown areas are skipped.
func BuildHeatmap(entries []HeatmapEntry, lookup AreaLookup, proj geo.Projection, p HeatmapParams) (Heatmap, error) {
	h := Heatmap{Blobs: make([]Blob, 0, len(entries)), Skipped: []string{}}
	for _, e := range entries {
		center, ok := lookup.AreaCenter(e.Area)
		if !ok {
			h.Skipped = append(h.Skipped, e.Area)
			continue
		}
		at, err := proj.Project(center)
		if err != nil {
			return Heatmap{}, err
		}
		color := blobColor(e.Percentage, p.Ceiling)
		h.Blobs = append(h.Blobs, Blob{
			Area:       e.Area,
			At:         at,
			Size:       math.Max(p.MinSize, e.Percentage*p.ScaleFactor),
			Color:      color,
			Fill:       color.CSS(HeatmapAlpha),
			Count:      e.Count,
			Percentage: e.Percentage,
		})
	}
	return h, nil
}

func blobColor(pct, ceiling float64) RGB {
	if ceiling <= 0 {
		return HighTraffic
	}
	return LerpRGB(LowTraffic, HighTraffic, math.Min(pct/ceiling, 1))
}
