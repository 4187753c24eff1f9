package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScene(t *testing.T) RoundScene {
	t.Helper()
	tr, err := BuildTrajectory(TrajectoryInput{
		Player:  "NiKo",
		Color:   "#10b981",
		Journey: []core.JourneyPoint{jp(0, 10, 10), jp(2, 20, 30), jp(10, 110, 10)},
		Throws:  []core.UtilityThrow{{Time: 4, Type: core.UtilitySmoke, X: 50, Y: 50}},
	}, unitProjection(t), testIcons, DefaultWeights())
	require.NoError(t, err)
	return RoundScene{
		Title:        "B-Site · Round 3",
		Background:   "/maps/de_dust2/b.webp",
		Trajectories: []Trajectory{tr},
		Legend:       []LegendEntry{{Name: "NiKo", Color: "#10b981", Detail: "Ak47"}},
	}
}

func TestWriteRoundScene(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoundScene(&buf, sampleScene(t)))
	out := buf.String()

	assert.Contains(t, out, `viewBox="0 0 1000 1000"`)
	assert.Contains(t, out, "overflow:visible")
	assert.Contains(t, out, `/maps/de_dust2/b.webp`)
	assert.Equal(t, 2, strings.Count(out, "<line"), "one line per segment")
	assert.Contains(t, out, `x2="1100"`, "overflowing points are drawn outside the canvas")
	assert.Contains(t, out, "stroke-width:18.0", "longest dwell at max weight")
	assert.Contains(t, out, "Smoke Grenade · 4.0s")
	assert.Contains(t, out, "NiKo · Ak47")
	assert.NotContains(t, out, "No data")

	// utility markers are drawn after every trajectory element
	assert.Greater(t, strings.Index(out, "Smoke Grenade"), strings.LastIndex(out, "<line"))
}

func TestWriteRoundScene_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteRoundScene(&a, sampleScene(t)))
	require.NoError(t, WriteRoundScene(&b, sampleScene(t)))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteRoundScene_NoData(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRoundScene(&buf, RoundScene{NoData: true, Message: "No CT players in B-Site this round"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "No CT players in B-Site this round")
	assert.NotContains(t, out, "<line")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestWriteHeatmapScene(t *testing.T) {
	h, err := BuildHeatmap([]HeatmapEntry{
		{Area: "Doors", Count: 2, Percentage: 5},
		{Area: "Window", Count: 12, Percentage: 45},
	}, lookup{"Window": {X: 50, Y: 50}, "Doors": {X: 10, Y: 90}}, unitProjection(t), DefaultHeatmapParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHeatmapScene(&buf, HeatmapScene{Title: "heat", Heatmap: h}))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, "Window · 45.0% (12)")
	assert.Contains(t, out, "fill:#ef4444")
	assert.Less(t, strings.Index(out, "Window"), strings.Index(out, "Doors"), "larger blob drawn first")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteRoundScene_WriteError(t *testing.T) {
	assert.Error(t, WriteRoundScene(failWriter{}, sampleScene(t)))
}
