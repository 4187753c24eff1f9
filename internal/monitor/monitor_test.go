package monitor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/csdemo/siteview/internal/cache"
	"github.com/csdemo/siteview/internal/dataset"
	"github.com/csdemo/siteview/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	points []*influxdb2_write.Point
	err    error
}

func (w *recordingWriter) WritePoint(p *influxdb2_write.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, p)
	return w.err
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.points)
}

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	snap := dataset.NewSnapshot()
	snap.Set("file:data.json", &core.DemoDataset{
		Metadata: core.Metadata{DemoFile: "test.dem", TotalRounds: 24, Map: "de_dust2"},
		Rounds:   []core.Round{{RoundNum: 1}},
	}, nil)
	c, err := cache.NewSceneCache(4)
	require.NoError(t, err)
	c.Add("de_dust2/b/heatmap", cache.Entry{Body: []byte("<svg/>")})
	_, _ = c.Get("de_dust2/b/heatmap")
	_, _ = c.Get("missing")
	return Dependencies{Snapshot: snap, Cache: c}
}

func TestGetProgramStatus(t *testing.T) {
	st := NewService(testDeps(t)).GetProgramStatus()
	assert.True(t, st.Dataset.Loaded)
	assert.Equal(t, "file:data.json", st.Dataset.Source)
	assert.Equal(t, cache.Stats{Size: 1, Hits: 1, Misses: 1}, st.Cache)
}

func TestStatusPoint(t *testing.T) {
	st := ProgramStatus{
		Time:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Dataset: dataset.Status{Source: "file:data.json", Loaded: true, TotalRounds: 24},
		Cache:   cache.Stats{Size: 3, Hits: 10, Misses: 3},
	}
	line := influxdb2_write.PointToLineProtocol(StatusPoint(st), time.Nanosecond)
	assert.True(t, strings.HasPrefix(line, "viewer_status,source=file:data.json "), line)
	assert.Contains(t, line, "cache_hits=10i")
	assert.Contains(t, line, "loaded=true")
}

func TestTick_WritesStatusFileAndPoint(t *testing.T) {
	deps := testDeps(t)
	deps.StatusPath = filepath.Join(t.TempDir(), "status.json")
	w := &recordingWriter{}
	deps.Points = w

	require.NoError(t, NewService(deps).Tick())
	assert.Equal(t, 1, w.count())

	data, err := os.ReadFile(deps.StatusPath)
	require.NoError(t, err)
	var st ProgramStatus
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, 24, st.Dataset.TotalRounds)
}

func TestTick_PointError(t *testing.T) {
	deps := testDeps(t)
	deps.Points = &recordingWriter{err: errors.New("backup writer not available")}
	assert.ErrorContains(t, NewService(deps).Tick(), "status point")
}

func TestStartStop(t *testing.T) {
	deps := testDeps(t)
	deps.Interval = 5 * time.Millisecond
	w := &recordingWriter{}
	deps.Points = w
	s := NewService(deps)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Eventually(t, func() bool { return w.count() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStart_WritesStatusImmediately(t *testing.T) {
	deps := testDeps(t)
	deps.Interval = time.Hour
	deps.StatusPath = filepath.Join(t.TempDir(), "status.json")
	w := &recordingWriter{}
	deps.Points = w
	s := NewService(deps)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return w.count() == 1 }, time.Second, 5*time.Millisecond)
	data, err := os.ReadFile(deps.StatusPath)
	require.NoError(t, err)
	var st ProgramStatus
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, 24, st.Dataset.TotalRounds)
}
