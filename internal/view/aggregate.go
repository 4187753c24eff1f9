package view

import (
	"sort"

	"github.com/csdemo/siteview/pkg/core"
)

// TopN is a prefix of the aggregate statistics plus how many were left out.
type TopN struct {
	Stats     []core.AreaAggregateStat `json:"stats"`
	Remaining int                      `json:"remaining"`
}

// TopPositions takes the first n stats in dataset order. The producer
// already ranks position_stats, so no sort is applied here.
func TopPositions(stats []core.AreaAggregateStat, n int) TopN {
	if n < 0 {
		n = 0
	}
	if n > len(stats) {
		n = len(stats)
	}
	top := make([]core.AreaAggregateStat, n)
	copy(top, stats[:n])
	return TopN{Stats: top, Remaining: len(stats) - n}
}

// AreaInsight is the headline for one area of the aggregate view.
type AreaInsight struct {
	Area         string       `json:"area"`
	TopBuyType   core.BuyType `json:"topBuyType,omitempty"`
	BuyTypeCount int          `json:"buyTypeCount"`
	TopEntry     string       `json:"topEntry,omitempty"`
	EntryCount   int          `json:"entryCount"`
}

// Insight finds the most common buy type and entry point of an area.
// Ties break on the lexically smaller key so the result is stable.
func Insight(stat core.AreaAggregateStat) AreaInsight {
	in := AreaInsight{Area: stat.Area}
	for bt, share := range stat.ByBuyType {
		if beats(share.Count, string(bt), in.BuyTypeCount, string(in.TopBuyType)) {
			in.TopBuyType = bt
			in.BuyTypeCount = share.Count
		}
	}
	for entry, n := range stat.EntryPoints {
		if beats(n, entry, in.EntryCount, in.TopEntry) {
			in.TopEntry = entry
			in.EntryCount = n
		}
	}
	return in
}

func beats(count int, key string, bestCount int, bestKey string) bool {
	return bestKey == "" || count > bestCount || (count == bestCount && key < bestKey)
}

// AreaUtility is one row of the utility breakdown.
type AreaUtility struct {
	Area   string         `json:"area"`
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
}

// UtilityBreakdown orders areas by total utility thrown, most first.
func UtilityBreakdown(utility map[string]map[string]int) []AreaUtility {
	out := make([]AreaUtility, 0, len(utility))
	for area, byType := range utility {
		total := 0
		for _, n := range byType {
			total += n
		}
		out = append(out, AreaUtility{Area: area, Total: total, ByType: byType})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Area < out[j].Area
	})
	return out
}
