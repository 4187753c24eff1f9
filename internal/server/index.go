package server

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/csdemo/siteview/internal/dataset"
	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/view"
	"github.com/csdemo/siteview/pkg/core"
	"github.com/gin-gonic/gin"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav>{{range .Maps}}{{$m := .}}{{range $id, $s := .Sites}}{{if $s.Enabled}}<a href="/?map={{$m.ID}}&site={{$id}}">{{$m.Name}} {{$s.Label}}</a> {{end}}{{end}}{{end}}</nav>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
<h1>{{.Title}}</h1>
<p>{{.Status.DemoFile}} · {{.Status.TotalRounds}} rounds</p>
{{if .Empty}}<p class="empty">No analysis data loaded.{{with .Status.Report.Cause}} {{.}}{{end}}</p>{{end}}
<nav>
<a href="/?map={{.State.Map}}&site={{.State.Site}}&mode=rounds&round={{.Prev}}&buyType={{.State.BuyType}}">Prev</a>
Round {{.State.Round}}
<a href="/?map={{.State.Map}}&site={{.State.Site}}&mode=rounds&round={{.Next}}&buyType={{.State.BuyType}}">Next</a>
{{range .BuyTypes}}<a href="/?map={{$.State.Map}}&site={{$.State.Site}}&mode=rounds&round={{$.State.Round}}&buyType={{.}}">{{.Label}}</a> {{end}}
<a href="/?map={{.State.Map}}&site={{.State.Site}}&mode=heatmap">Heatmap</a>
<a href="/?map={{.State.Map}}&site={{.State.Site}}&mode=aggregate">Aggregate</a>
</nav>
<img src="{{.Scene}}" alt="{{.Title}}" width="800" height="800">
{{end}}
</body>
</html>
`))

type indexPage struct {
	Title    string
	Error    string
	Empty    bool
	Maps     []*maps.Map
	Status   dataset.Status
	State    view.State
	Prev     int
	Next     int
	BuyTypes []core.BuyType
	Scene    string
}

func (s *Server) index(c *gin.Context) {
	page := indexPage{
		Title:    "Site view",
		Maps:     s.deps.Registry.Maps(),
		Status:   s.deps.Snapshot.Status(),
		BuyTypes: []core.BuyType{core.BuyAll, core.BuyPistol, core.BuyEco, core.BuyLight, core.BuyFull},
	}

	ds, err := s.deps.Snapshot.Dataset()
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusServiceUnavailable, "index", page)
		return
	}
	site, err := s.deps.Registry.Lookup(
		firstNonEmpty(c.Query("map"), s.deps.Maps.DefaultMap),
		firstNonEmpty(c.Query("site"), s.deps.Maps.DefaultSite))
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusNotFound, "index", page)
		return
	}
	buy, err := core.ParseBuyType(c.DefaultQuery("buyType", string(core.BuyAll)))
	if err != nil {
		buy = core.BuyAll
	}

	total := ds.TotalRounds()
	round, err := strconv.Atoi(c.Query("round"))
	if err != nil {
		round = view.FirstRoundWithData(ds)
	}
	st := view.NewState(site.MapID, site.ID).WithBuyType(buy).WithRound(round, total)
	page.Title = site.Label
	page.Empty = ds.IsEmpty()
	page.Prev = st.Prev(total).Round
	page.Next = st.Next(total).Round

	switch view.Mode(c.Query("mode")) {
	case view.ModeHeatmap:
		st = st.WithMode(view.ModeHeatmap)
		page.Scene = "/maps/" + site.MapID + "/" + site.ID + "/heatmap.svg"
	case view.ModeAggregate:
		st = st.WithMode(view.ModeAggregate)
		page.Scene = "/maps/" + site.MapID + "/" + site.ID + "/frequency.svg"
	default:
		page.Scene = roundScenePath(st)
	}
	page.State = st
	c.HTML(http.StatusOK, "index", page)
}
