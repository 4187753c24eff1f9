// Package maps holds the loadable registry of map sites: their bounding
// regions, axis orientation, area lookup tables and utility icons.
//
// Map and site ids are case-insensitive and stored in lower case.
package maps

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/csdemo/siteview/internal/geo"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/spf13/viper"
)

//go:embed default_maps.json
var defaultRegistry []byte

var (
	// ErrUnknownMap is returned when a map or site id is not in the registry
	ErrUnknownMap = errors.New("unknown map")
	// ErrSiteDisabled is returned for sites that are listed but have no data yet
	ErrSiteDisabled = errors.New("site not enabled")
)

// Area is one entry of a site's area lookup table.
type Area struct {
	Label string `mapstructure:"label" json:"label"`
	At    string `mapstructure:"at" json:"at"`
}

// UtilityIcon maps a utility type label to its display icon.
type UtilityIcon struct {
	Type string `mapstructure:"type" json:"type"`
	Icon string `mapstructure:"icon" json:"icon"`
}

// Site is one bombsite of a map.
type Site struct {
	ID         string      `mapstructure:"-" json:"id"`
	MapID      string      `mapstructure:"-" json:"map"`
	Label      string      `mapstructure:"label" json:"label"`
	Enabled    bool        `mapstructure:"enabled" json:"enabled"`
	Bounds     core.Bounds `mapstructure:"bounds" json:"bounds"`
	InvertX    bool        `mapstructure:"invertX" json:"invertX"`
	InvertY    bool        `mapstructure:"invertY" json:"invertY"`
	Background string      `mapstructure:"background" json:"background"`
	Areas      []Area      `mapstructure:"areas" json:"areas,omitempty"`

	region  geo.Region
	centers map[string]core.WorldPoint
}

// Map groups the sites of one map.
type Map struct {
	ID    string           `mapstructure:"-" json:"id"`
	Name  string           `mapstructure:"name" json:"name"`
	Order int              `mapstructure:"order" json:"-"`
	Sites map[string]*Site `mapstructure:"sites" json:"sites"`
}

type registryFile struct {
	FallbackIcon string          `mapstructure:"fallbackIcon"`
	UtilityIcons []UtilityIcon   `mapstructure:"utilityIcons"`
	Maps         map[string]*Map `mapstructure:"maps"`
}

// Registry is the validated, read-only set of known maps.
type Registry struct {
	maps     map[string]*Map
	icons    map[string]string
	fallback string
}

// LoadDefault loads the registry compiled into the binary.
func LoadDefault() (*Registry, error) {
	return Load(bytes.NewReader(defaultRegistry))
}

// LoadFile loads a registry from a JSON file. An empty path loads the default.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return LoadDefault()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading map registry %s: %w", path, err)
	}
	return fromViper(v)
}

// Load reads a JSON registry from r.
func Load(r io.Reader) (*Registry, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading map registry: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Registry, error) {
	var raw registryFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("error decoding map registry: %w", err)
	}

	reg := &Registry{
		maps:     make(map[string]*Map, len(raw.Maps)),
		icons:    make(map[string]string, len(raw.UtilityIcons)),
		fallback: raw.FallbackIcon,
	}
	if reg.fallback == "" {
		reg.fallback = "?"
	}
	for _, icon := range raw.UtilityIcons {
		reg.icons[icon.Type] = icon.Icon
	}

	restoreEmpty(v, &raw)

	for mapID, m := range raw.Maps {
		if m == nil {
			continue
		}
		mapID = normalizeID(mapID)
		m.ID = mapID
		if m.Name == "" {
			m.Name = mapID
		}
		if m.Sites == nil {
			m.Sites = map[string]*Site{}
		}
		sites := make(map[string]*Site, len(m.Sites))
		for siteID, s := range m.Sites {
			if s == nil {
				s = &Site{}
			}
			siteID = normalizeID(siteID)
			s.ID = siteID
			s.MapID = mapID
			if err := s.prepare(); err != nil {
				return nil, fmt.Errorf("map %s site %s: %w", mapID, siteID, err)
			}
			sites[siteID] = s
		}
		m.Sites = sites
		reg.maps[mapID] = m
	}
	return reg, nil
}

// restoreEmpty adds maps and sites declared as empty objects, which viper
// leaves out when unmarshaling.
func restoreEmpty(v *viper.Viper, raw *registryFile) {
	if raw.Maps == nil {
		raw.Maps = map[string]*Map{}
	}
	for mapID := range v.GetStringMap("maps") {
		m := raw.Maps[mapID]
		if m == nil {
			m = &Map{}
			raw.Maps[mapID] = m
		}
		if m.Sites == nil {
			m.Sites = map[string]*Site{}
		}
		for siteID := range v.GetStringMap("maps." + mapID + ".sites") {
			if _, ok := m.Sites[siteID]; !ok {
				m.Sites[siteID] = &Site{}
			}
		}
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// prepare validates an enabled site and builds its lookup table.
// Disabled sites are listed only and need no bounds.
func (s *Site) prepare() error {
	if s.Background == "" {
		s.Background = fmt.Sprintf("/maps/%s/%s.webp", s.MapID, s.ID)
	}
	if s.Label == "" {
		s.Label = strings.ToUpper(s.ID) + "-Site"
	}
	if !s.Enabled {
		return nil
	}

	region, err := geo.RegionFromBounds(s.Bounds)
	if err != nil {
		return err
	}
	s.region = region

	s.centers = make(map[string]core.WorldPoint, len(s.Areas))
	for _, a := range s.Areas {
		p, err := geo.WorldPointFromString(a.At)
		if err != nil {
			return fmt.Errorf("area %q: %w", a.Label, err)
		}
		s.centers[a.Label] = p
	}
	return nil
}

// Projection returns the site's world to screen mapping.
func (s *Site) Projection() geo.Projection {
	return geo.Projection{Region: s.region, InvertX: s.InvertX, InvertY: s.InvertY}
}

// AreaCenter returns the representative world coordinate of an area label.
func (s *Site) AreaCenter(label string) (core.WorldPoint, bool) {
	p, ok := s.centers[label]
	return p, ok
}

// Lookup returns an enabled site. Ids are matched case-insensitively.
func (r *Registry) Lookup(mapID, siteID string) (*Site, error) {
	m, ok := r.maps[normalizeID(mapID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMap, mapID)
	}
	s, ok := m.Sites[normalizeID(siteID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownMap, mapID, siteID)
	}
	if !s.Enabled {
		return nil, fmt.Errorf("%w: %s/%s", ErrSiteDisabled, mapID, siteID)
	}
	return s, nil
}

// Maps returns all maps in display order.
func (r *Registry) Maps() []*Map {
	out := make([]*Map, 0, len(r.maps))
	for _, m := range r.maps {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Icon returns the display icon for a utility type, or the fallback icon.
func (r *Registry) Icon(utilityType string) string {
	if icon, ok := r.icons[utilityType]; ok {
		return icon
	}
	return r.fallback
}
