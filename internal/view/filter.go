package view

import (
	"fmt"

	"github.com/csdemo/siteview/pkg/core"
)

// NoDataMessage is shown when a round has no player matching the filter
const NoDataMessage = "No CT players in this round"

// PlayerMissingMessage returns the message for a highlighted player who is
// not among the round's filtered players.
func PlayerMissingMessage(name string) string {
	return fmt.Sprintf("%s is not in this round", name)
}

// RoundView is the filtered content of one round.
type RoundView struct {
	Round       int                      `json:"round"`
	TotalRounds int                      `json:"totalRounds"`
	BuyType     core.BuyType             `json:"buyType"`
	Players     []core.PlayerRoundRecord `json:"players"`
	NoData      bool                     `json:"noData"`
	Message     string                   `json:"message,omitempty"`
}

// FilterPlayers keeps players of the given buy type in their original order.
func FilterPlayers(players []core.PlayerRoundRecord, buyType core.BuyType) []core.PlayerRoundRecord {
	out := make([]core.PlayerRoundRecord, 0, len(players))
	for _, p := range players {
		if buyType == core.BuyAll || buyType == "" || p.BuyType == buyType {
			out = append(out, p)
		}
	}
	return out
}

// Round narrows a dataset to the selected round and filter. A round with no
// qualifying players, or one that is missing, is reported as NoData. So is a
// highlighted player who is not among the qualifying players; Players then
// still lists everyone who qualifies.
func Round(ds *core.DemoDataset, s State) RoundView {
	v := RoundView{
		Round:       s.Round,
		TotalRounds: ds.TotalRounds(),
		BuyType:     s.BuyType,
		Players:     []core.PlayerRoundRecord{},
	}
	if v.BuyType == "" {
		v.BuyType = core.BuyAll
	}
	if r, ok := ds.Round(s.Round); ok {
		v.Players = FilterPlayers(r.CTPlayers, v.BuyType)
	}
	switch {
	case len(v.Players) == 0:
		v.NoData = true
		v.Message = NoDataMessage
	case len(VisiblePlayers(v.Players, s.Player)) == 0:
		v.NoData = true
		v.Message = PlayerMissingMessage(s.Player)
	}
	return v
}

// NoDataMessageFor names the site in the no data message, e.g. "No CT players in B-Site this round".
func NoDataMessageFor(siteLabel string) string {
	if siteLabel == "" {
		return NoDataMessage
	}
	return fmt.Sprintf("No CT players in %s this round", siteLabel)
}

// RoundsWithData lists round numbers that have at least one player.
func RoundsWithData(ds *core.DemoDataset) []int {
	return FilterRounds(ds, core.BuyAll)
}

// FilterRounds lists round numbers that have at least one player of the buy type.
func FilterRounds(ds *core.DemoDataset, buyType core.BuyType) []int {
	if ds == nil {
		return []int{}
	}
	out := make([]int, 0, len(ds.Rounds))
	for _, r := range ds.Rounds {
		if len(FilterPlayers(r.CTPlayers, buyType)) > 0 {
			out = append(out, r.RoundNum)
		}
	}
	return out
}

// FirstRoundWithData picks the initial round: the first with any player, else 1.
func FirstRoundWithData(ds *core.DemoDataset) int {
	if rounds := RoundsWithData(ds); len(rounds) > 0 {
		return rounds[0]
	}
	return 1
}

// VisiblePlayer is a player to draw with its round color.
type VisiblePlayer struct {
	core.PlayerRoundRecord
	Color string
}

// VisiblePlayers returns everyone when nothing is selected, else only the
// selected player. Colors follow the position in players, so a highlighted
// player keeps the color it has in the full round.
func VisiblePlayers(players []core.PlayerRoundRecord, selected string) []VisiblePlayer {
	out := make([]VisiblePlayer, 0, len(players))
	for i, p := range players {
		if selected != "" && p.Name != selected {
			continue
		}
		out = append(out, VisiblePlayer{PlayerRoundRecord: p, Color: PlayerColor(i)})
	}
	return out
}

var palette = []string{"#3b82f6", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899"}

// PlayerColor returns the trajectory color for the i-th player of a round.
func PlayerColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}
