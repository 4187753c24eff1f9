// pkg/core/player.go
package core

import (
	"fmt"
	"strings"
	"unicode"
)

// BuyType is the economic category of a player's round
type BuyType string

const (
	BuyAll    BuyType = "all" // filter selector only, never stored on a record
	BuyPistol BuyType = "pistol"
	BuyEco    BuyType = "eco"
	BuyLight  BuyType = "light_buy"
	BuyFull   BuyType = "full_buy"
)

// BuyTypes lists the stored buy types in display order
var BuyTypes = []BuyType{BuyPistol, BuyEco, BuyLight, BuyFull}

// Valid reports whether b is one of the stored buy types
func (b BuyType) Valid() bool {
	switch b {
	case BuyPistol, BuyEco, BuyLight, BuyFull:
		return true
	}
	return false
}

// Label returns the short display label
func (b BuyType) Label() string {
	switch b {
	case BuyAll:
		return "All Rounds"
	case BuyPistol:
		return "Pistol Round"
	case BuyEco:
		return "Eco"
	case BuyLight:
		return "Light Buy"
	case BuyFull:
		return "Full Buy"
	default:
		return string(b)
	}
}

// ParseBuyType parses a filter selector. Empty input selects all rounds.
func ParseBuyType(s string) (BuyType, error) {
	b := BuyType(strings.ToLower(strings.TrimSpace(s)))
	if b == "" || b == BuyAll {
		return BuyAll, nil
	}
	if !b.Valid() {
		return "", fmt.Errorf("unknown buy type %q", s)
	}
	return b, nil
}

// Equipment is a player's loadout at site entry
type Equipment struct {
	PrimaryWeapon string `json:"primary_weapon"`
	ArmorValue    int    `json:"armor_value"`
	HasHelmet     bool   `json:"has_helmet"`
	TotalValue    int    `json:"total_value"`
	Health        int    `json:"health"`
}

// ArmorLabel describes the armor worn
func (e Equipment) ArmorLabel() string {
	if e.ArmorValue <= 0 {
		return "None"
	}
	if e.HasHelmet {
		return "Kevlar + Helmet"
	}
	return "Kevlar"
}

// WeaponName returns the display name of the primary weapon
func (e Equipment) WeaponName() string {
	return FormatWeaponName(e.PrimaryWeapon)
}

// FormatWeaponName strips the weapon_ prefix and title-cases the remaining words.
func FormatWeaponName(weapon string) string {
	if weapon == "" || weapon == "None" {
		return "None"
	}
	name := strings.ReplaceAll(strings.Replace(weapon, "weapon_", "", 1), "_", " ")
	runes := []rune(name)
	atWordStart := true
	for i, r := range runes {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if isWord && atWordStart {
			runes[i] = unicode.ToUpper(r)
		}
		atWordStart = !isWord
	}
	return string(runes)
}

// JourneyPoint is one sampled position of a player
type JourneyPoint struct {
	Tick    int     `json:"tick"`
	Time    float64 `json:"time"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Area    string  `json:"area"`
	IsEntry bool    `json:"is_entry"`
}

// World returns the sampled position in world units
func (p JourneyPoint) World() WorldPoint {
	return WorldPoint{X: p.X, Y: p.Y}
}

// UtilityThrow is a single grenade or utility event
type UtilityThrow struct {
	Tick int     `json:"tick"`
	Time float64 `json:"time"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Area string  `json:"area"`
}

// World returns the throw position in world units
func (u UtilityThrow) World() WorldPoint {
	return WorldPoint{X: u.X, Y: u.Y}
}

// Known utility types
const (
	UtilitySmoke      = "Smoke Grenade"
	UtilityFlashbang  = "Flashbang"
	UtilityHE         = "HE Grenade"
	UtilityMolotov    = "Molotov"
	UtilityIncendiary = "Incendiary Grenade"
)

// PlayerRoundRecord is everything known about one CT player in one round
type PlayerRoundRecord struct {
	Name            string         `json:"name"`
	BuyType         BuyType        `json:"buy_type"`
	Equipment       Equipment      `json:"equipment"`
	Journey         []JourneyPoint `json:"journey"`
	UtilityThrows   []UtilityThrow `json:"utility_throws"`
	EntryPoint      string         `json:"entry_point"`
	PrimaryPosition string         `json:"primary_position"`
	TimeInSite      float64        `json:"time_in_site"`
}
