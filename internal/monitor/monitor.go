// Package monitor periodically reports the health of a running viewer.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/csdemo/siteview/internal/cache"
	"github.com/csdemo/siteview/internal/dataset"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// StatusMeasurement is the measurement name of status points
const StatusMeasurement = "viewer_status"

// PointWriter receives status points, e.g. the influx manager.
type PointWriter interface {
	WritePoint(point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Snapshot   *dataset.Snapshot
	Cache      *cache.SceneCache
	Logger     *slog.Logger
	Points     PointWriter // optional
	StatusPath string      // optional, rewritten on every tick
	Interval   time.Duration
}

// ProgramStatus is one status sample.
type ProgramStatus struct {
	Time    time.Time      `json:"time"`
	Dataset dataset.Status `json:"dataset"`
	Cache   cache.Stats    `json:"cache"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus samples the dataset and cache state.
func (s *Service) GetProgramStatus() ProgramStatus {
	st := ProgramStatus{Time: time.Now().UTC()}
	if s.deps.Snapshot != nil {
		st.Dataset = s.deps.Snapshot.Status()
	}
	if s.deps.Cache != nil {
		st.Cache = s.deps.Cache.Stats()
	}
	return st
}

// StatusPoint converts a sample into a time series point.
func StatusPoint(st ProgramStatus) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(StatusMeasurement).
		AddTag("source", st.Dataset.Source).
		AddField("loaded", st.Dataset.Loaded).
		AddField("rounds", st.Dataset.TotalRounds).
		AddField("quarantined", st.Dataset.Report.Quarantined()).
		AddField("cache_size", st.Cache.Size).
		AddField("cache_hits", st.Cache.Hits).
		AddField("cache_misses", st.Cache.Misses).
		SetTime(st.Time)
}

// Tick takes one sample and writes it to the status file and point writer.
func (s *Service) Tick() error {
	st := s.GetProgramStatus()
	logger := s.deps.Logger

	if s.deps.StatusPath != "" {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding status: %w", err)
		}
		if err := os.WriteFile(s.deps.StatusPath, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("error writing status file: %w", err)
		}
	}
	if s.deps.Points != nil {
		if err := s.deps.Points.WritePoint(StatusPoint(st)); err != nil {
			return fmt.Errorf("error writing status point: %w", err)
		}
	}
	logger.Debug("Viewer status", "cacheSize", st.Cache.Size, "cacheHits", st.Cache.Hits, "cacheMisses", st.Cache.Misses)
	return nil
}

// Start starts the status monitor goroutine. The first sample is taken
// immediately, then one per interval.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)

		logger := s.deps.Logger
		logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		if err := s.Tick(); err != nil {
			logger.Error("Status monitor tick failed", "error", err)
		}

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.Tick(); err != nil {
					logger.Error("Status monitor tick failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
