package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyDataset(t *testing.T) {
	ds := EmptyDataset()

	assert.True(t, ds.IsEmpty())
	assert.NotNil(t, ds.Positions)
	assert.NotNil(t, ds.Utility)
	assert.Empty(t, ds.Positions)
	assert.Empty(t, ds.Utility)
	assert.Equal(t, 0, ds.TotalRounds())
}

func TestDemoDataset_Round(t *testing.T) {
	ds := &DemoDataset{
		Rounds: []Round{
			{RoundNum: 1},
			{RoundNum: 3, CTPlayers: []PlayerRoundRecord{{Name: "ropz"}}},
		},
	}

	r, ok := ds.Round(3)
	assert.True(t, ok)
	assert.Equal(t, "ropz", r.CTPlayers[0].Name)

	_, ok = ds.Round(2)
	assert.False(t, ok)

	var nilDS *DemoDataset
	_, ok = nilDS.Round(1)
	assert.False(t, ok)
}

func TestDemoDataset_TotalRounds(t *testing.T) {
	ds := &DemoDataset{Rounds: []Round{{RoundNum: 4}, {RoundNum: 9}}}
	assert.Equal(t, 9, ds.TotalRounds())

	ds.Metadata.TotalRounds = 24
	assert.Equal(t, 24, ds.TotalRounds())
}
