// pkg/core/dataset.go
package core

// Metadata describes the demo a dataset was produced from
type Metadata struct {
	DemoFile    string `json:"demo_file"`
	TotalRounds int    `json:"total_rounds"`
	Map         string `json:"map"`
}

// Round holds the CT player records observed in one round
type Round struct {
	RoundNum  int                 `json:"round_num"`
	CTPlayers []PlayerRoundRecord `json:"ct_players"`
}

// BuyTypeShare is the count and fraction of occurrences for one buy type
type BuyTypeShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AreaAggregateStat summarizes how often an area was a player's primary position
type AreaAggregateStat struct {
	Area             string                   `json:"area"`
	OverallFrequency float64                  `json:"overall_frequency"`
	TotalOccurrences int                      `json:"total_occurrences"`
	ByBuyType        map[BuyType]BuyTypeShare `json:"by_buy_type"`
	EntryPoints      map[string]int           `json:"entry_points"`
	UniquePlayers    int                      `json:"unique_players"`
}

// Aggregate holds statistics precomputed across all rounds
type Aggregate struct {
	TotalRounds   int                 `json:"total_rounds"`
	PositionStats []AreaAggregateStat `json:"position_stats"`
}

// DemoDataset is the root document produced by the analysis pipeline.
// Positions and Utility carry the older dashboard summary and may be empty.
type DemoDataset struct {
	Metadata  Metadata                  `json:"metadata"`
	Rounds    []Round                   `json:"rounds"`
	Aggregate Aggregate                 `json:"aggregate"`
	Positions []AreaCount               `json:"positions"`
	Utility   map[string]map[string]int `json:"utility"`
}

// EmptyDataset returns the dataset substituted when nothing could be loaded
func EmptyDataset() *DemoDataset {
	return &DemoDataset{
		Rounds:    []Round{},
		Aggregate: Aggregate{PositionStats: []AreaAggregateStat{}},
		Positions: []AreaCount{},
		Utility:   map[string]map[string]int{},
	}
}

// IsEmpty reports whether the dataset carries no renderable content
func (d *DemoDataset) IsEmpty() bool {
	return d == nil || (len(d.Rounds) == 0 && len(d.Aggregate.PositionStats) == 0 &&
		len(d.Positions) == 0 && len(d.Utility) == 0)
}

// Round returns the round with the given number
func (d *DemoDataset) Round(num int) (Round, bool) {
	if d == nil {
		return Round{}, false
	}
	for _, r := range d.Rounds {
		if r.RoundNum == num {
			return r, true
		}
	}
	return Round{}, false
}

// TotalRounds prefers the metadata count and falls back to the highest round number seen.
func (d *DemoDataset) TotalRounds() int {
	if d == nil {
		return 0
	}
	if d.Metadata.TotalRounds > 0 {
		return d.Metadata.TotalRounds
	}
	highest := 0
	for _, r := range d.Rounds {
		if r.RoundNum > highest {
			highest = r.RoundNum
		}
	}
	return highest
}
