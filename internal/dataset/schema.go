// Package dataset loads the externally produced analytics document, validates
// it at the boundary and keeps the immutable snapshot served to renderers.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/csdemo/siteview/pkg/core"
)

// ErrNotDataset is returned when the document root is not a dataset object
var ErrNotDataset = errors.New("document is not a dataset object")

type rawDataset struct {
	Metadata  json.RawMessage            `json:"metadata"`
	Rounds    []json.RawMessage          `json:"rounds"`
	Aggregate json.RawMessage            `json:"aggregate"`
	Positions []json.RawMessage          `json:"positions"`
	Utility   map[string]json.RawMessage `json:"utility"`
}

type rawMetadata struct {
	DemoFile    string   `json:"demo_file"`
	TotalRounds *float64 `json:"total_rounds"`
	Map         string   `json:"map"`
}

type rawRound struct {
	RoundNum  *float64          `json:"round_num"`
	CTPlayers []json.RawMessage `json:"ct_players"`
}

type rawPlayer struct {
	Name            *string           `json:"name"`
	BuyType         *string           `json:"buy_type"`
	Equipment       *rawEquipment     `json:"equipment"`
	Journey         []json.RawMessage `json:"journey"`
	UtilityThrows   []json.RawMessage `json:"utility_throws"`
	EntryPoint      *string           `json:"entry_point"`
	PrimaryPosition *string           `json:"primary_position"`
	TimeInSite      *float64          `json:"time_in_site"`
}

type rawEquipment struct {
	PrimaryWeapon  *string  `json:"primary_weapon"`
	ArmorValue     *float64 `json:"armor_value"`
	HasHelmet      *bool    `json:"has_helmet"`
	TotalValue     *float64 `json:"total_value"`
	EquipmentValue *float64 `json:"equipment_value"`
	Health         *float64 `json:"health"`
}

type rawSample struct {
	Tick    *float64 `json:"tick"`
	Time    *float64 `json:"time"`
	Type    *string  `json:"type"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Area    *string  `json:"area"`
	IsEntry *bool    `json:"is_entry"`
}

type rawAggregate struct {
	TotalRounds   *float64          `json:"total_rounds"`
	PositionStats []json.RawMessage `json:"position_stats"`
}

type rawPositionStat struct {
	Area             *string                      `json:"area"`
	OverallFrequency *float64                     `json:"overall_frequency"`
	TotalOccurrences *float64                     `json:"total_occurrences"`
	ByBuyType        map[string]core.BuyTypeShare `json:"by_buy_type"`
	EntryPoints      map[string]float64           `json:"entry_points"`
	UniquePlayers    *float64                     `json:"unique_players"`
}

type rawAreaCount struct {
	Area       *string  `json:"area"`
	Count      *float64 `json:"count"`
	Percentage *float64 `json:"percentage"`
}

// Parse validates a dataset document. Records that cannot be rendered are
// quarantined into the report; only a document that is not a dataset at all
// is an error.
func Parse(data []byte) (*core.DemoDataset, *Report, error) {
	report := &Report{}
	data, report.NonFinite = replaceNonFinite(data)

	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrNotDataset, err)
	}

	ds := core.EmptyDataset()

	if len(raw.Metadata) > 0 {
		var meta rawMetadata
		if err := json.Unmarshal(raw.Metadata, &meta); err != nil {
			report.quarantine("metadata", "malformed: %v", err)
		} else {
			ds.Metadata = core.Metadata{DemoFile: meta.DemoFile, Map: meta.Map}
			if meta.TotalRounds != nil {
				if n, ok := wholeNumber(*meta.TotalRounds, 0); ok {
					ds.Metadata.TotalRounds = n
				} else {
					report.quarantine("metadata.total_rounds", "invalid value %v", *meta.TotalRounds)
				}
			}
		}
	}

	for i, msg := range raw.Rounds {
		if r, ok := parseRound(fmt.Sprintf("rounds[%d]", i), msg, report); ok {
			ds.Rounds = append(ds.Rounds, r)
		}
	}
	report.Rounds = len(ds.Rounds)

	if len(raw.Aggregate) > 0 {
		var agg rawAggregate
		if err := json.Unmarshal(raw.Aggregate, &agg); err != nil {
			report.quarantine("aggregate", "malformed: %v", err)
		} else {
			if agg.TotalRounds != nil {
				if n, ok := wholeNumber(*agg.TotalRounds, 0); ok {
					ds.Aggregate.TotalRounds = n
				} else {
					report.quarantine("aggregate.total_rounds", "invalid value %v", *agg.TotalRounds)
				}
			}
			for i, msg := range agg.PositionStats {
				if s, ok := parsePositionStat(fmt.Sprintf("aggregate.position_stats[%d]", i), msg, report); ok {
					ds.Aggregate.PositionStats = append(ds.Aggregate.PositionStats, s)
				}
			}
		}
	}

	for i, msg := range raw.Positions {
		path := fmt.Sprintf("positions[%d]", i)
		var ac rawAreaCount
		if err := json.Unmarshal(msg, &ac); err != nil {
			report.quarantine(path, "malformed: %v", err)
			continue
		}
		if ac.Area == nil || *ac.Area == "" {
			report.quarantine(path, "missing area")
			continue
		}
		if ac.Percentage == nil {
			report.quarantine(path, "missing percentage")
			continue
		}
		ds.Positions = append(ds.Positions, core.AreaCount{
			Area:       *ac.Area,
			Count:      intOr(ac.Count, 0),
			Percentage: *ac.Percentage,
		})
	}

	for area, msg := range raw.Utility {
		var counts map[string]float64
		if err := json.Unmarshal(msg, &counts); err != nil {
			report.quarantine("utility."+area, "malformed: %v", err)
			continue
		}
		byType := make(map[string]int, len(counts))
		for grenade, n := range counts {
			byType[grenade] = int(n)
		}
		ds.Utility[area] = byType
	}

	return ds, report, nil
}

func parseRound(path string, msg json.RawMessage, report *Report) (core.Round, bool) {
	var rr rawRound
	if err := json.Unmarshal(msg, &rr); err != nil {
		report.quarantine(path, "malformed: %v", err)
		return core.Round{}, false
	}
	if rr.RoundNum == nil {
		report.quarantine(path, "missing round_num")
		return core.Round{}, false
	}
	num, ok := wholeNumber(*rr.RoundNum, 1)
	if !ok {
		report.quarantine(path, "invalid round_num %v", *rr.RoundNum)
		return core.Round{}, false
	}

	round := core.Round{RoundNum: num, CTPlayers: []core.PlayerRoundRecord{}}
	for i, pm := range rr.CTPlayers {
		if p, ok := parsePlayer(fmt.Sprintf("%s.ct_players[%d]", path, i), pm, report); ok {
			round.CTPlayers = append(round.CTPlayers, p)
		}
	}
	report.Players += len(round.CTPlayers)
	return round, true
}

func parsePlayer(path string, msg json.RawMessage, report *Report) (core.PlayerRoundRecord, bool) {
	var rp rawPlayer
	if err := json.Unmarshal(msg, &rp); err != nil {
		report.quarantine(path, "malformed: %v", err)
		return core.PlayerRoundRecord{}, false
	}
	if rp.Name == nil || *rp.Name == "" {
		report.quarantine(path, "missing name")
		return core.PlayerRoundRecord{}, false
	}
	if rp.BuyType == nil {
		report.quarantine(path, "missing buy_type")
		return core.PlayerRoundRecord{}, false
	}
	buyType, err := core.ParseBuyType(*rp.BuyType)
	if err != nil || buyType == core.BuyAll {
		report.quarantine(path, "invalid buy_type %q", *rp.BuyType)
		return core.PlayerRoundRecord{}, false
	}

	p := core.PlayerRoundRecord{
		Name:            *rp.Name,
		BuyType:         buyType,
		Equipment:       parseEquipment(rp.Equipment),
		Journey:         []core.JourneyPoint{},
		UtilityThrows:   []core.UtilityThrow{},
		EntryPoint:      stringOr(rp.EntryPoint, ""),
		PrimaryPosition: stringOr(rp.PrimaryPosition, ""),
		TimeInSite:      floatOr(rp.TimeInSite, 0),
	}

	for i, jm := range rp.Journey {
		jpath := fmt.Sprintf("%s.journey[%d]", path, i)
		s, ok := parseSample(jpath, jm, report, true)
		if !ok {
			continue
		}
		p.Journey = append(p.Journey, core.JourneyPoint{
			Tick:    intOr(s.Tick, 0),
			Time:    *s.Time,
			X:       *s.X,
			Y:       *s.Y,
			Area:    stringOr(s.Area, ""),
			IsEntry: s.IsEntry != nil && *s.IsEntry,
		})
	}
	report.JourneyPoints += len(p.Journey)

	for i, um := range rp.UtilityThrows {
		upath := fmt.Sprintf("%s.utility_throws[%d]", path, i)
		s, ok := parseSample(upath, um, report, false)
		if !ok {
			continue
		}
		p.UtilityThrows = append(p.UtilityThrows, core.UtilityThrow{
			Tick: intOr(s.Tick, 0),
			Time: floatOr(s.Time, 0),
			Type: stringOr(s.Type, ""),
			X:    *s.X,
			Y:    *s.Y,
			Area: stringOr(s.Area, ""),
		})
	}
	return p, true
}

// parseSample validates a positioned event. Journey points also need a time.
func parseSample(path string, msg json.RawMessage, report *Report, needTime bool) (rawSample, bool) {
	var s rawSample
	if err := json.Unmarshal(msg, &s); err != nil {
		report.quarantine(path, "malformed: %v", err)
		return s, false
	}
	if s.X == nil || s.Y == nil {
		report.quarantine(path, "missing or non-finite coordinates")
		return s, false
	}
	if needTime && s.Time == nil {
		report.quarantine(path, "missing or non-finite time")
		return s, false
	}
	return s, true
}

func parseEquipment(re *rawEquipment) core.Equipment {
	if re == nil {
		return core.Equipment{PrimaryWeapon: "None"}
	}
	total := re.TotalValue
	if total == nil {
		total = re.EquipmentValue
	}
	return core.Equipment{
		PrimaryWeapon: stringOr(re.PrimaryWeapon, "None"),
		ArmorValue:    intOr(re.ArmorValue, 0),
		HasHelmet:     re.HasHelmet != nil && *re.HasHelmet,
		TotalValue:    intOr(total, 0),
		Health:        intOr(re.Health, 0),
	}
}

func parsePositionStat(path string, msg json.RawMessage, report *Report) (core.AreaAggregateStat, bool) {
	var rs rawPositionStat
	if err := json.Unmarshal(msg, &rs); err != nil {
		report.quarantine(path, "malformed: %v", err)
		return core.AreaAggregateStat{}, false
	}
	if rs.Area == nil || *rs.Area == "" {
		report.quarantine(path, "missing area")
		return core.AreaAggregateStat{}, false
	}
	if rs.OverallFrequency == nil {
		report.quarantine(path, "missing or non-finite overall_frequency")
		return core.AreaAggregateStat{}, false
	}

	stat := core.AreaAggregateStat{
		Area:             *rs.Area,
		OverallFrequency: *rs.OverallFrequency,
		TotalOccurrences: intOr(rs.TotalOccurrences, 0),
		ByBuyType:        make(map[core.BuyType]core.BuyTypeShare, len(rs.ByBuyType)),
		EntryPoints:      make(map[string]int, len(rs.EntryPoints)),
		UniquePlayers:    intOr(rs.UniquePlayers, 0),
	}
	for key, share := range rs.ByBuyType {
		bt := core.BuyType(key)
		if !bt.Valid() || bt == core.BuyAll {
			report.quarantine(path+".by_buy_type."+key, "unknown buy type")
			continue
		}
		stat.ByBuyType[bt] = share
	}
	for entry, n := range rs.EntryPoints {
		stat.EntryPoints[entry] = int(n)
	}
	return stat, true
}

// replaceNonFinite rewrites the NaN and Infinity literals some producers emit
// into null so that the affected fields fail validation instead of the document.
func replaceNonFinite(data []byte) ([]byte, int) {
	tokens := [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}
	var out []byte
	replaced := 0
	inString, escaped := false, false
	last := 0

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		for _, tok := range tokens {
			if hasPrefixAt(data, i, tok) {
				if out == nil {
					out = make([]byte, 0, len(data))
				}
				out = append(out, data[last:i]...)
				out = append(out, "null"...)
				i += len(tok) - 1
				last = i + 1
				replaced++
				break
			}
		}
	}
	if out == nil {
		return data, 0
	}
	return append(out, data[last:]...), replaced
}

func hasPrefixAt(data []byte, i int, tok []byte) bool {
	if len(data)-i < len(tok) {
		return false
	}
	for j := range tok {
		if data[i+j] != tok[j] {
			return false
		}
	}
	return true
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func floatOr(f *float64, def float64) float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return def
	}
	return *f
}

// maxRounds bounds round numbers and round totals.
const maxRounds = math.MaxInt32

// wholeNumber converts an integral JSON number in [lo, maxRounds].
func wholeNumber(f float64, lo int) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < float64(lo) || f > maxRounds {
		return 0, false
	}
	return int(f), true
}

func intOr(f *float64, def int) int {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return def
	}
	return int(math.Round(*f))
}
