package render

import (
	"testing"

	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup map[string]core.WorldPoint

func (l lookup) AreaCenter(label string) (core.WorldPoint, bool) {
	p, ok := l[label]
	return p, ok
}

func TestBuildHeatmap(t *testing.T) {
	areas := lookup{"Window": {X: 50, Y: 50}, "Doors": {X: 10, Y: 90}}
	entries := []HeatmapEntry{
		{Area: "Window", Count: 12, Percentage: 45},
		{Area: "Mid Doors", Count: 3, Percentage: 5},
		{Area: "Doors", Count: 2, Percentage: 5},
	}

	h, err := BuildHeatmap(entries, areas, unitProjection(t), DefaultHeatmapParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"Mid Doors"}, h.Skipped)
	require.Len(t, h.Blobs, 2)

	window := h.Blobs[0]
	assert.Equal(t, core.ScreenPoint{X: 50, Y: 50}, window.At)
	assert.Equal(t, 180.0, window.Size)
	assert.Equal(t, HighTraffic, window.Color, "above the ceiling")
	assert.Equal(t, "rgba(239, 68, 68, 0.6)", window.Fill)

	doors := h.Blobs[1]
	assert.Equal(t, 30.0, doors.Size, "minimum size")
	// t = 5/30
	assert.Equal(t, RGB{R: 89, G: 120, B: 216}, doors.Color)
}

func TestEntries(t *testing.T) {
	fromStats := EntriesFromStats([]core.AreaAggregateStat{{Area: "Window", OverallFrequency: 0.42, TotalOccurrences: 21}})
	assert.Len(t, fromStats, 1)
	assert.Equal(t, "Window", fromStats[0].Area)
	assert.Equal(t, 21, fromStats[0].Count)
	assert.InDelta(t, 42, fromStats[0].Percentage, 1e-9)

	fromPositions := EntriesFromPositions([]core.AreaCount{{Area: "Doors", Count: 3, Percentage: 7.5}})
	assert.Equal(t, []HeatmapEntry{{Area: "Doors", Count: 3, Percentage: 7.5}}, fromPositions)
}
