package server

import (
	"net/http"
	"strconv"

	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/render"
	"github.com/csdemo/siteview/internal/view"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/gin-gonic/gin"
)

// RoundResponse is the view model of GET /api/v1/rounds/:round.
type RoundResponse struct {
	State        view.State          `json:"state"`
	Prev         int                 `json:"prev"`
	Next         int                 `json:"next"`
	RoundsByBuy  []int               `json:"roundsWithData"`
	View         view.RoundView      `json:"view"`
	Trajectories []render.Trajectory `json:"trajectories"`
	Scene        string              `json:"scene"`
}

// AggregateResponse is the view model of GET /api/v1/aggregate.
type AggregateResponse struct {
	TotalRounds int                `json:"totalRounds"`
	Top         view.TopN          `json:"top"`
	Insights    []view.AreaInsight `json:"insights"`
}

func (s *Server) healthcheck(c *gin.Context) {
	st := s.deps.Snapshot.Status()
	status := "ok"
	if st.Error != "" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"dataset": st,
		"cache":   s.deps.Cache.Stats(),
	})
}

func (s *Server) listMaps(c *gin.Context) {
	success(c, s.deps.Registry.Maps())
}

func (s *Server) datasetStatus(c *gin.Context) {
	st := s.deps.Snapshot.Status()
	if st.Error != "" {
		fail(c, http.StatusServiceUnavailable, st.Error)
		return
	}
	success(c, st)
}

// loaded returns the dataset or answers 503 when loading failed.
func (s *Server) loaded(c *gin.Context) (*core.DemoDataset, bool) {
	ds, err := s.deps.Snapshot.Dataset()
	if err != nil {
		s.deps.Logger.Warn("Request against failed dataset", "path", c.Request.URL.Path, "error", err)
		fail(c, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return ds, true
}

// site resolves the map and site from path params, falling back to query
// params and then the configured default.
func (s *Server) site(c *gin.Context) (*maps.Site, bool) {
	mapID := firstNonEmpty(c.Param("map"), c.Query("map"), s.deps.Maps.DefaultMap)
	siteID := firstNonEmpty(c.Param("site"), c.Query("site"), s.deps.Maps.DefaultSite)
	site, err := s.deps.Registry.Lookup(mapID, siteID)
	if err != nil {
		lookupFailed(c, err)
		return nil, false
	}
	return site, true
}

// state builds the view state of a round request.
func (s *Server) state(c *gin.Context, site *maps.Site, roundParam string) (view.State, bool) {
	round, err := strconv.Atoi(roundParam)
	if err != nil || round < 1 {
		badRequest(c, "round must be a positive integer")
		return view.State{}, false
	}
	buy, err := core.ParseBuyType(c.DefaultQuery("buyType", string(core.BuyAll)))
	if err != nil {
		badRequest(c, err.Error())
		return view.State{}, false
	}
	st := view.NewState(site.MapID, site.ID).WithBuyType(buy).WithPlayer(c.Query("player"))
	st.Round = round
	return st, true
}

func (s *Server) round(c *gin.Context) {
	ds, ok := s.loaded(c)
	if !ok {
		return
	}
	site, ok := s.site(c)
	if !ok {
		return
	}
	st, ok := s.state(c, site, c.Param("round"))
	if !ok {
		return
	}

	res, err := s.deps.Renderer.Round(ds, site, st)
	if err != nil {
		c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	total := ds.TotalRounds()
	success(c, RoundResponse{
		State:        st,
		Prev:         st.Prev(total).Round,
		Next:         st.Next(total).Round,
		RoundsByBuy:  view.FilterRounds(ds, st.BuyType),
		View:         res.View,
		Trajectories: res.Trajectories,
		Scene:        roundScenePath(st),
	})
}

func (s *Server) aggregate(c *gin.Context) {
	ds, ok := s.loaded(c)
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

	top := view.TopPositions(ds.Aggregate.PositionStats, n)
	insights := make([]view.AreaInsight, 0, len(top.Stats))
	for _, stat := range top.Stats {
		insights = append(insights, view.Insight(stat))
	}
	success(c, AggregateResponse{
		TotalRounds: ds.Aggregate.TotalRounds,
		Top:         top,
		Insights:    insights,
	})
}

func (s *Server) utility(c *gin.Context) {
	ds, ok := s.loaded(c)
	if !ok {
		return
	}
	success(c, view.UtilityBreakdown(ds.Utility))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
