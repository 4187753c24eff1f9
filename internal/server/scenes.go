package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/csdemo/siteview/internal/render"
	"github.com/csdemo/siteview/internal/view"
	"github.com/gin-gonic/gin"
)

const svgContentType = "image/svg+xml"

// CacheHeader reports whether a scene came from the render cache
const CacheHeader = "X-Scene-Cache"

func roundScenePath(st view.State) string {
	q := url.Values{}
	q.Set("buyType", string(st.BuyType))
	if st.Player != "" {
		q.Set("player", st.Player)
	}
	return fmt.Sprintf("/maps/%s/%s/rounds/%d.svg?%s", st.Map, st.Site, st.Round, q.Encode())
}

func (s *Server) roundScene(c *gin.Context) {
	file := c.Param("file")
	roundParam, ok := strings.CutSuffix(file, ".svg")
	if !ok {
		notFound(c, "round scenes are served as <round>.svg")
		return
	}
	ds, ok := s.loaded(c)
	if !ok {
		return
	}
	site, ok := s.site(c)
	if !ok {
		return
	}
	st, ok := s.state(c, site, roundParam)
	if !ok {
		return
	}
	s.scene(c, st.Key(), func(w io.Writer) error {
		return s.deps.Renderer.WriteRound(w, ds, site, st)
	})
}

func (s *Server) heatmapScene(c *gin.Context) {
	ds, ok := s.loaded(c)
	if !ok {
		return
	}
	site, ok := s.site(c)
	if !ok {
		return
	}
	st := view.NewState(site.MapID, site.ID).WithMode(view.ModeHeatmap)
	s.scene(c, st.Key(), func(w io.Writer) error {
		return s.deps.Renderer.WriteHeatmap(w, ds, site)
	})
}

func (s *Server) frequencyChart(c *gin.Context) {
	ds, ok := s.loaded(c)
	if !ok {
		return
	}
	site, ok := s.site(c)
	if !ok {
		return
	}
	n := s.deps.TopN
	if raw := c.Query("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, "top must be a non-negative integer")
			return
		}
		n = v
	}
	key := fmt.Sprintf("%s/%s/%s/frequency/%d", site.MapID, site.ID, view.ModeAggregate, n)
	s.scene(c, key, func(w io.Writer) error {
		return s.deps.Renderer.WriteChart(w, ds, n)
	})
}

// scene serves an SVG through the render cache.
func (s *Server) scene(c *gin.Context, key string, draw func(io.Writer) error) {
	entry, hit, err := s.deps.Cache.GetOrRender(key, svgContentType, draw)
	if errors.Is(err, render.ErrNoChartData) {
		notFound(c, err.Error())
		return
	}
	if err != nil {
		s.deps.Logger.Error("Scene render failed", "key", key, "error", err)
		c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Header(CacheHeader, cacheLabel(hit))
	c.Data(http.StatusOK, entry.ContentType, entry.Body)
}

func cacheLabel(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// background serves /maps/<map>/<site>.webp from the static directory.
func (s *Server) background(c *gin.Context) {
	siteID, ok := strings.CutSuffix(c.Param("site"), ".webp")
	if !ok {
		notFound(c, "not found")
		return
	}
	site, err := s.deps.Registry.Lookup(c.Param("map"), siteID)
	if err != nil {
		lookupFailed(c, err)
		return
	}
	path := filepath.Join(s.deps.Config.StaticDir, "maps", site.MapID, site.ID+".webp")
	if _, err := os.Stat(path); err != nil {
		notFound(c, "background image not available")
		return
	}
	c.File(path)
}
