package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/csdemo/siteview/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status summarizes the loaded dataset for health and API responses.
type Status struct {
	Source      string    `json:"source"`
	Loaded      bool      `json:"loaded"`
	LoadedAt    time.Time `json:"loadedAt,omitempty"`
	Error       string    `json:"error,omitempty"`
	DemoFile    string    `json:"demoFile"`
	Map         string    `json:"map"`
	TotalRounds int       `json:"totalRounds"`
	Report      Report    `json:"report"`
}

// Snapshot holds the dataset for the lifetime of the process.
// It is written once by Load and read concurrently afterwards.
type Snapshot struct {
	mu       sync.RWMutex
	dataset  *core.DemoDataset
	report   *Report
	source   string
	loadedAt time.Time
	err      error

	loads       metric.Int64Counter
	quarantined metric.Int64Counter
}

// NewSnapshot creates a snapshot holding the empty dataset.
func NewSnapshot() *Snapshot {
	s := &Snapshot{
		dataset: core.EmptyDataset(),
		report:  &Report{},
	}
	m := meter()
	s.loads, _ = m.Int64Counter("siteview.dataset.loads",
		metric.WithDescription("Dataset load attempts by outcome"))
	s.quarantined, _ = m.Int64Counter("siteview.dataset.quarantined",
		metric.WithDescription("Dataset records left out by validation"))
	return s
}

// Load runs src and stores its result. A source error puts the snapshot into
// the error state, which is reported instead of rendering.
func (s *Snapshot) Load(ctx context.Context, src Source, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ds, report, err := src.Load(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if s.loads != nil {
		s.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}

	if err != nil {
		logger.Error("Failed to load dataset", "source", src.Name(), "error", err)
		s.fail(src.Name(), err)
		return err
	}

	if report == nil {
		report = &Report{}
	}
	if _, isFile := src.(FileSource); !isFile {
		logQuarantine(logger, src.Name(), report)
	}
	if s.quarantined != nil && report.Quarantined() > 0 {
		s.quarantined.Add(ctx, int64(report.Quarantined()))
	}
	s.Set(src.Name(), ds, report)
	return nil
}

// Set stores a loaded dataset.
func (s *Snapshot) Set(source string, ds *core.DemoDataset, report *Report) {
	if ds == nil {
		ds = core.EmptyDataset()
	}
	if report == nil {
		report = &Report{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.report = report
	s.source = source
	s.loadedAt = time.Now().UTC()
	s.err = nil
}

func (s *Snapshot) fail(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = core.EmptyDataset()
	s.report = &Report{}
	s.source = source
	s.loadedAt = time.Time{}
	s.err = err
}

// Dataset returns the dataset, or the load error when the source failed.
func (s *Snapshot) Dataset() (*core.DemoDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.dataset, nil
}

// Status returns a summary of the current state.
func (s *Snapshot) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Source:   s.source,
		Loaded:   !s.loadedAt.IsZero(),
		LoadedAt: s.loadedAt,
		Report:   *s.report,
	}
	if s.err != nil {
		st.Error = s.err.Error()
		return st
	}
	st.DemoFile = s.dataset.Metadata.DemoFile
	st.Map = s.dataset.Metadata.Map
	st.TotalRounds = s.dataset.TotalRounds()
	return st
}
