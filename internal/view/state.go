// Package view narrows the loaded dataset to what one screen shows. State is
// an immutable value; every selection change returns a new State.
package view

import (
	"fmt"

	"github.com/csdemo/siteview/pkg/core"
)

// Mode selects which visualization a state renders
type Mode string

const (
	ModeRounds    Mode = "rounds"
	ModeAggregate Mode = "aggregate"
	ModeHeatmap   Mode = "heatmap"
)

// State is the viewer selection: round, buy type filter, highlighted player and mode.
type State struct {
	Map     string       `json:"map"`
	Site    string       `json:"site"`
	Round   int          `json:"round"`
	BuyType core.BuyType `json:"buyType"`
	Player  string       `json:"player,omitempty"`
	Mode    Mode         `json:"mode"`
}

// NewState returns the initial selection for a map site.
func NewState(mapID, siteID string) State {
	return State{Map: mapID, Site: siteID, Round: 1, BuyType: core.BuyAll, Mode: ModeRounds}
}

// WithRound selects a round, clamped to [1, total].
func (s State) WithRound(round, total int) State {
	s.Round = clampRound(round, total)
	return s
}

// WithBuyType selects a buy type filter and clears the player highlight.
func (s State) WithBuyType(b core.BuyType) State {
	s.BuyType = b
	s.Player = ""
	return s
}

// WithPlayer highlights one player. An empty name shows everyone.
func (s State) WithPlayer(name string) State {
	s.Player = name
	return s
}

// WithMode switches the visualization
func (s State) WithMode(m Mode) State {
	s.Mode = m
	return s
}

// Next moves to the following round without passing total.
func (s State) Next(total int) State {
	return s.WithRound(s.Round+1, total)
}

// Prev moves to the previous round without going below 1.
func (s State) Prev(total int) State {
	return s.WithRound(s.Round-1, total)
}

// Key identifies the rendered output of a state.
func (s State) Key() string {
	buy := s.BuyType
	if buy == "" {
		buy = core.BuyAll
	}
	return fmt.Sprintf("%s/%s/%s/r%d/%s/%s", s.Map, s.Site, s.Mode, s.Round, buy, s.Player)
}

func clampRound(round, total int) int {
	if total < 1 {
		return 1
	}
	if round < 1 {
		return 1
	}
	if round > total {
		return total
	}
	return round
}
