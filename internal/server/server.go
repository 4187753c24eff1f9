// Package server exposes the rendered scenes and view models over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/csdemo/siteview/internal/cache"
	"github.com/csdemo/siteview/internal/config"
	"github.com/csdemo/siteview/internal/dataset"
	"github.com/csdemo/siteview/internal/logging"
	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/monitor"
	"github.com/csdemo/siteview/internal/render"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components a Server serves from.
type Deps struct {
	Config   config.ServerConfig
	Maps     config.MapsConfig
	TopN     int
	Snapshot *dataset.Snapshot
	Registry *maps.Registry
	Renderer *render.Renderer
	Cache    *cache.SceneCache
	Logger   *slog.Logger
	Access   *logging.KVLogger

	// Status enables the live status stream at /ws/status.
	Status         *monitor.Service
	StreamInterval time.Duration
}

// Server is the HTTP viewer.
type Server struct {
	deps   Deps
	engine *gin.Engine

	done     chan struct{}
	doneOnce sync.Once
}

// New validates deps and builds the router.
func New(d Deps) (*Server, error) {
	if d.Snapshot == nil || d.Registry == nil || d.Renderer == nil {
		return nil, errors.New("server needs a snapshot, a map registry and a renderer")
	}
	if d.Cache == nil {
		c, err := cache.NewSceneCache(d.Config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create scene cache: %w", err)
		}
		d.Cache = c
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.TopN <= 0 {
		d.TopN = 5
	}
	if d.Config.GinMode != "" {
		gin.SetMode(d.Config.GinMode)
	}

	s := &Server{deps: d, done: make(chan struct{})}
	s.engine = s.router()
	return s, nil
}

// Handler returns the router for use with httptest or a custom listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.deps.Config.Address,
		Handler:      s.engine,
		ReadTimeout:  s.deps.Config.ReadTimeout,
		WriteTimeout: s.deps.Config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("HTTP viewer listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.deps.Logger.Info("Shutting down HTTP viewer")
	s.doneOnce.Do(func() { close(s.done) })
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(s.deps.Access))
	r.SetHTMLTemplate(indexTemplate)

	r.GET("/", s.index)
	r.GET("/healthcheck", s.healthcheck)
	r.GET("/ws/status", s.statusStream)

	api := r.Group("/api/v1")
	{
		api.GET("/maps", s.listMaps)
		api.GET("/dataset", s.datasetStatus)
		api.GET("/rounds/:round", s.round)
		api.GET("/aggregate", s.aggregate)
		api.GET("/utility", s.utility)
	}

	site := r.Group("/maps/:map/:site")
	{
		site.GET("", s.background)
		site.GET("/rounds/:file", s.roundScene)
		site.GET("/heatmap.svg", s.heatmapScene)
		site.GET("/frequency.svg", s.frequencyChart)
	}
	return r
}
