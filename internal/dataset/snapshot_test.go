package dataset

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/csdemo/siteview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	ds     *core.DemoDataset
	report *Report
	err    error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Load(context.Context) (*core.DemoDataset, *Report, error) {
	return s.ds, s.report, s.err
}

func TestNewSnapshot_Empty(t *testing.T) {
	s := NewSnapshot()
	ds, err := s.Dataset()
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())
	assert.False(t, s.Status().Loaded)
}

func TestSnapshot_LoadFileSource(t *testing.T) {
	var logs bytes.Buffer
	s := NewSnapshot()
	err := s.Load(context.Background(), FileSource{
		Path:   filepath.Join("testdata", "sample.json"),
		Logger: testLogger(&logs),
	}, testLogger(&logs))
	require.NoError(t, err)

	st := s.Status()
	assert.True(t, st.Loaded)
	assert.Equal(t, "de_dust2", st.Map)
	assert.Equal(t, 3, st.TotalRounds)
	assert.Equal(t, 4, st.Report.Quarantined())
	assert.Equal(t, "file:"+filepath.Join("testdata", "sample.json"), st.Source)
}

func TestSnapshot_FetchFailureIsErrorState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var logs bytes.Buffer
	s := NewSnapshot()
	err := s.Load(context.Background(), HTTPSource{URL: server.URL}, testLogger(&logs))
	require.Error(t, err)

	_, dsErr := s.Dataset()
	assert.Equal(t, err, dsErr)
	assert.Contains(t, s.Status().Error, "status 404")
	assert.Contains(t, logs.String(), "Failed to load dataset")
}

func TestSnapshot_LoadRecoversAfterError(t *testing.T) {
	s := NewSnapshot()
	require.Error(t, s.Load(context.Background(), stubSource{err: errors.New("boom")}, nil))

	want := &core.DemoDataset{Metadata: core.Metadata{Map: "de_dust2"}}
	require.NoError(t, s.Load(context.Background(), stubSource{ds: want}, nil))

	got, err := s.Dataset()
	require.NoError(t, err)
	assert.Same(t, want, got)
	report := s.Status().Report
	assert.True(t, report.Clean())
}

func TestSnapshot_ConcurrentReads(t *testing.T) {
	s := NewSnapshot()
	s.Set("stub", core.EmptyDataset(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Dataset()
			_ = s.Status()
		}()
	}
	wg.Wait()
}
