package view

import (
	"testing"

	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestTopPositions_KeepsDatasetOrder(t *testing.T) {
	stats := []core.AreaAggregateStat{
		{Area: "Back site Tucked", OverallFrequency: 0.42},
		{Area: "Window", OverallFrequency: 0.10},
		{Area: "Default", OverallFrequency: 0.30},
	}

	top := TopPositions(stats, 5)
	var freqs []float64
	for _, s := range top.Stats {
		freqs = append(freqs, s.OverallFrequency)
	}
	assert.Equal(t, []float64{0.42, 0.10, 0.30}, freqs)
	assert.Equal(t, 0, top.Remaining)
}

func TestTopPositions_Prefix(t *testing.T) {
	stats := make([]core.AreaAggregateStat, 8)
	for i := range stats {
		stats[i].TotalOccurrences = i
	}

	top := TopPositions(stats, 5)
	assert.Len(t, top.Stats, 5)
	assert.Equal(t, 3, top.Remaining)
	assert.Equal(t, 4, top.Stats[4].TotalOccurrences)

	top.Stats[0].Area = "changed"
	assert.Empty(t, stats[0].Area, "result does not alias the input")

	assert.Empty(t, TopPositions(nil, 5).Stats)
	assert.Equal(t, 8, TopPositions(stats, -1).Remaining)
}

func TestInsight(t *testing.T) {
	stat := core.AreaAggregateStat{
		Area: "Back site Tucked",
		ByBuyType: map[core.BuyType]core.BuyTypeShare{
			core.BuyFull: {Count: 15, Percentage: 71.4},
			core.BuyEco:  {Count: 6, Percentage: 28.6},
		},
		EntryPoints: map[string]int{"Tunnel Exit": 9, "Doors": 9, "Car B-Site": 2},
	}

	in := Insight(stat)
	assert.Equal(t, core.BuyFull, in.TopBuyType)
	assert.Equal(t, 15, in.BuyTypeCount)
	assert.Equal(t, "Doors", in.TopEntry, "ties break on the smaller key")
	assert.Equal(t, 9, in.EntryCount)

	empty := Insight(core.AreaAggregateStat{Area: "Window"})
	assert.Empty(t, empty.TopBuyType)
	assert.Empty(t, empty.TopEntry)
}

func TestUtilityBreakdown(t *testing.T) {
	rows := UtilityBreakdown(map[string]map[string]int{
		"Doors":       {"Smoke Grenade": 4, "Flashbang": 2},
		"Tunnel Exit": {"Molotov": 7},
		"Window":      {"Flashbang": 3, "HE Grenade": 3},
	})

	var areas []string
	for _, r := range rows {
		areas = append(areas, r.Area)
	}
	assert.Equal(t, []string{"Tunnel Exit", "Doors", "Window"}, areas)
	assert.Equal(t, 6, rows[1].Total)
	assert.Empty(t, UtilityBreakdown(nil))
}
