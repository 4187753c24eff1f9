package maps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/csdemo/siteview/internal/geo"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	site, err := reg.Lookup("de_dust2", "b")
	require.NoError(t, err)
	assert.Equal(t, "B-Site", site.Label)
	assert.Equal(t, core.Bounds{MinX: -2264, MaxX: -963, MinY: -72, MaxY: 1738}, site.Bounds)
	assert.False(t, site.InvertX)
	assert.True(t, site.InvertY)
	assert.Equal(t, "/maps/de_dust2/b.webp", site.Background)

	p, ok := site.AreaCenter("Back site Tucked")
	require.True(t, ok)
	assert.Equal(t, core.WorldPoint{X: -1534, Y: 1272}, p)

	_, ok = site.AreaCenter("back site tucked")
	assert.False(t, ok, "area labels are case sensitive")
}

func TestLoadDefault_MapOrder(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	var ids []string
	for _, m := range reg.Maps() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{
		"de_dust2", "de_mirage", "de_inferno", "de_nuke", "de_anubis", "de_ancient", "de_vertigo",
	}, ids)
}

func TestLookup_Errors(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	_, err = reg.Lookup("de_train", "a")
	assert.ErrorIs(t, err, ErrUnknownMap)

	_, err = reg.Lookup("de_dust2", "c")
	assert.ErrorIs(t, err, ErrUnknownMap)

	_, err = reg.Lookup("de_mirage", "a")
	assert.ErrorIs(t, err, ErrSiteDisabled)
}

func TestSite_Projection(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)
	site, err := reg.Lookup("de_dust2", "b")
	require.NoError(t, err)

	proj := site.Projection()
	top, err := proj.Project(core.WorldPoint{X: -2264, Y: 1738})
	require.NoError(t, err)
	assert.InDelta(t, 0, top.X, 1e-9)
	assert.InDelta(t, 0, top.Y, 1e-9, "north edge maps to the top of the screen")

	bottom, err := proj.Project(core.WorldPoint{X: -963, Y: -72})
	require.NoError(t, err)
	assert.InDelta(t, 100, bottom.X, 1e-9)
	assert.InDelta(t, 100, bottom.Y, 1e-9)
}

func TestIcon(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "💨", reg.Icon("Smoke Grenade"))
	assert.Equal(t, "🔥", reg.Icon("Incendiary Grenade"))
	assert.Equal(t, "🎯", reg.Icon("Decoy Grenade"))
	assert.Equal(t, "🎯", reg.Icon("Tactical Awareness Grenade"), "unknown types use the fallback")
}

func TestLoad_DegenerateBounds(t *testing.T) {
	doc := `{"maps": {"de_test": {"sites": {"a": {
		"enabled": true,
		"bounds": {"minX": 10, "maxX": 10, "minY": 0, "maxY": 5}
	}}}}}`

	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)

	var cfgErr *geo.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "x", cfgErr.Axis)
	assert.ErrorIs(t, err, geo.ErrDegenerateRegion)
}

func TestLoad_BadAreaCoordinates(t *testing.T) {
	doc := `{"maps": {"de_test": {"sites": {"a": {
		"enabled": true,
		"bounds": {"minX": 0, "maxX": 10, "minY": 0, "maxY": 5},
		"areas": [{"label": "Ramp", "at": "north"}]
	}}}}}`

	_, err := Load(strings.NewReader(doc))
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}

func TestLoad_DisabledSiteNeedsNoBounds(t *testing.T) {
	reg, err := Load(strings.NewReader(`{"maps": {"de_test": {"sites": {"a": {}}}}}`))
	require.NoError(t, err)

	_, err = reg.Lookup("de_test", "a")
	assert.ErrorIs(t, err, ErrSiteDisabled)
	assert.Equal(t, "?", reg.Icon("Smoke Grenade"))
}

func TestLoad_EmptyDeclarations(t *testing.T) {
	reg, err := Load(strings.NewReader(`{"maps": {"de_empty": {}, "de_test": {"sites": {"a": {}, "b": {"enabled": false}}}}}`))
	require.NoError(t, err)

	var ids []string
	for _, m := range reg.Maps() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"de_empty", "de_test"}, ids)

	for _, site := range []string{"a", "b"} {
		_, err = reg.Lookup("de_test", site)
		assert.ErrorIs(t, err, ErrSiteDisabled, site)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	doc := `{"maps": {"Dust2": {"sites": {"B": {
		"enabled": true,
		"bounds": {"minX": 0, "maxX": 10, "minY": 0, "maxY": 10}
	}}}}}`
	reg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	for _, ids := range [][2]string{{"Dust2", "B"}, {"dust2", "b"}, {"DUST2", "b"}} {
		site, err := reg.Lookup(ids[0], ids[1])
		require.NoError(t, err, ids)
		assert.Equal(t, "dust2", site.MapID)
		assert.Equal(t, "b", site.ID)
		assert.Equal(t, "/maps/dust2/b.webp", site.Background)
	}

	def, err := LoadDefault()
	require.NoError(t, err)
	_, err = def.Lookup("DE_DUST2", "B")
	assert.NoError(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps.json")
	doc := `{
		"fallbackIcon": "*",
		"utilityIcons": [{"type": "Smoke Grenade", "icon": "S"}],
		"maps": {"de_test": {"name": "Test", "sites": {"b": {
			"enabled": true,
			"bounds": {"minX": 0, "maxX": 100, "minY": 0, "maxY": 100},
			"background": "/static/test-b.png",
			"areas": [{"label": "Mid Window", "at": "50,50"}]
		}}}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	reg, err := LoadFile(path)
	require.NoError(t, err)

	site, err := reg.Lookup("de_test", "b")
	require.NoError(t, err)
	assert.Equal(t, "/static/test-b.png", site.Background)
	assert.Equal(t, "B-Site", site.Label)
	_, ok := site.AreaCenter("Mid Window")
	assert.True(t, ok)
	assert.Equal(t, "S", reg.Icon("Smoke Grenade"))
	assert.Equal(t, "*", reg.Icon("Flashbang"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
