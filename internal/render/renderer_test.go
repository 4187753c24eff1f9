package render

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/view"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	kinds []string
	sizes []int
}

func (o *recordingObserver) ObserveRender(kind string, _ time.Duration, size int, _ map[string]string) {
	o.kinds = append(o.kinds, kind)
	o.sizes = append(o.sizes, size)
}

func dust2B(t *testing.T) (*maps.Registry, *maps.Site) {
	t.Helper()
	reg, err := maps.LoadDefault()
	require.NoError(t, err)
	site, err := reg.Lookup("de_dust2", "b")
	require.NoError(t, err)
	return reg, site
}

func renderDataset() *core.DemoDataset {
	return &core.DemoDataset{
		Metadata: core.Metadata{TotalRounds: 2, Map: "de_dust2"},
		Rounds: []core.Round{{
			RoundNum: 1,
			CTPlayers: []core.PlayerRoundRecord{
				{
					Name:      "m0NESY",
					BuyType:   core.BuyFull,
					Equipment: core.Equipment{PrimaryWeapon: "weapon_awp", ArmorValue: 100, HasHelmet: true, TotalValue: 5700},
					Journey: []core.JourneyPoint{
						{Time: 10, X: -1656, Y: 188},
						{Time: 8, X: -1538, Y: 955},
						{Time: 20, X: -1534, Y: 1272},
					},
					UtilityThrows: []core.UtilityThrow{{Time: 12.5, Type: "Molotov", X: -1424, Y: 610}},
				},
				{Name: "Snax", BuyType: core.BuyEco},
			},
		}},
		Aggregate: core.Aggregate{PositionStats: []core.AreaAggregateStat{
			{Area: "Back site Tucked", OverallFrequency: 0.42, TotalOccurrences: 21},
			{Area: "Somewhere New", OverallFrequency: 0.2, TotalOccurrences: 10},
		}},
	}
}

func newTestRenderer(t *testing.T, reg *maps.Registry, logs *bytes.Buffer, obs Observer) *Renderer {
	t.Helper()
	r, err := New(Options{
		Icons:    reg,
		Logger:   slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Observer: obs,
	})
	require.NoError(t, err)
	return r
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err, "icons are required")

	reg, _ := dust2B(t)
	_, err = New(Options{Icons: reg, Weights: Weights{MinStroke: 3, MaxStroke: 1}})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestRenderer_Round(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	r := newTestRenderer(t, reg, &logs, nil)

	res, err := r.Round(renderDataset(), site, view.NewState("de_dust2", "b"))
	require.NoError(t, err)

	assert.False(t, res.View.NoData)
	require.Len(t, res.Trajectories, 1, "player without a journey is skipped")
	tr := res.Trajectories[0]
	assert.Equal(t, "#3b82f6", tr.Color)
	assert.Len(t, tr.Anomalies, 1)
	assert.Equal(t, "🔥", tr.Utility[0].Icon)
	assert.Len(t, res.Scene.Legend, 2)
	assert.Equal(t, "Awp · Kevlar + Helmet · $5700", res.Scene.Legend[0].Detail)

	assert.Contains(t, logs.String(), "Journey time went backwards")
	assert.Contains(t, logs.String(), "Player has no journey")
}

func TestRenderer_RoundNoData(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	r := newTestRenderer(t, reg, &logs, nil)

	state := view.NewState("de_dust2", "b").WithBuyType(core.BuyPistol)
	res, err := r.Round(renderDataset(), site, state)
	require.NoError(t, err)
	assert.True(t, res.View.NoData)
	assert.Equal(t, "No CT players in B-Site this round", res.View.Message)

	var buf bytes.Buffer
	require.NoError(t, r.WriteRound(&buf, renderDataset(), site, state))
	assert.Contains(t, buf.String(), "No CT players in B-Site this round")
}

func TestRenderer_RoundHighlight(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	r := newTestRenderer(t, reg, &logs, nil)

	res, err := r.Round(renderDataset(), site, view.NewState("de_dust2", "b").WithPlayer("Snax"))
	require.NoError(t, err)
	assert.Empty(t, res.Trajectories)
	require.Len(t, res.Scene.Legend, 1)
	assert.Equal(t, "#10b981", res.Scene.Legend[0].Color, "color follows the round order")
	assert.False(t, res.View.NoData)
}

func TestRenderer_RoundUnknownHighlight(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	r := newTestRenderer(t, reg, &logs, nil)

	state := view.NewState("de_dust2", "b").WithPlayer("s1mple")
	res, err := r.Round(renderDataset(), site, state)
	require.NoError(t, err)
	assert.True(t, res.View.NoData)
	assert.Equal(t, "s1mple is not in this round", res.View.Message)
	assert.Len(t, res.View.Players, 2)
	assert.Empty(t, res.Trajectories)
	assert.Empty(t, res.Scene.Legend)

	var buf bytes.Buffer
	require.NoError(t, r.WriteRound(&buf, renderDataset(), site, state))
	assert.Contains(t, buf.String(), "s1mple is not in this round")
}

func TestRenderer_WriteAndObserve(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	obs := &recordingObserver{}
	r := newTestRenderer(t, reg, &logs, obs)
	ds := renderDataset()

	var round, heat, chart bytes.Buffer
	require.NoError(t, r.WriteRound(&round, ds, site, view.NewState("de_dust2", "b")))
	require.NoError(t, r.WriteHeatmap(&heat, ds, site))
	require.NoError(t, r.WriteChart(&chart, ds, 5))

	assert.Equal(t, []string{"round", "heatmap", "chart"}, obs.kinds)
	assert.Equal(t, round.Len(), obs.sizes[0])
	assert.Contains(t, round.String(), "m0NESY")
	assert.Contains(t, heat.String(), "Back site Tucked")
	assert.NotContains(t, heat.String(), "Somewhere New")
	assert.Contains(t, logs.String(), "Heatmap areas without a location")
}

func TestRenderer_HeatmapFallsBackToPositions(t *testing.T) {
	reg, site := dust2B(t)
	var logs bytes.Buffer
	r := newTestRenderer(t, reg, &logs, nil)

	ds := core.EmptyDataset()
	ds.Positions = []core.AreaCount{{Area: "Window", Count: 4, Percentage: 10}}
	h, err := r.Heatmap(ds, site)
	require.NoError(t, err)
	require.Len(t, h.Blobs, 1)
	assert.Equal(t, 40.0, h.Blobs[0].Size)
}

func TestRenderer_ChartErrorWritesNothing(t *testing.T) {
	reg, _ := dust2B(t)
	var logs, out bytes.Buffer
	obs := &recordingObserver{}
	r := newTestRenderer(t, reg, &logs, obs)

	assert.ErrorIs(t, r.WriteChart(&out, core.EmptyDataset(), 5), ErrNoChartData)
	assert.Zero(t, out.Len())
	assert.Empty(t, obs.kinds)
}
