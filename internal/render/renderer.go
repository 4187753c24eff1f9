package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/csdemo/siteview/internal/maps"
	"github.com/csdemo/siteview/internal/view"
	"github.com/csdemo/siteview/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Observer receives timing of finished renders, e.g. for a time series store.
type Observer interface {
	ObserveRender(kind string, elapsed time.Duration, size int, tags map[string]string)
}

// Options configures a Renderer. Zero weights and heatmap params use the defaults.
type Options struct {
	Weights  Weights
	Heatmap  HeatmapParams
	Icons    Icons
	Logger   *slog.Logger
	Observer Observer
}

// Renderer runs the filter, mapping and drawing steps for one request.
type Renderer struct {
	weights  Weights
	heatmap  HeatmapParams
	icons    Icons
	logger   *slog.Logger
	observer Observer

	renders   metric.Int64Counter
	duration  metric.Float64Histogram
	anomalies metric.Int64Counter
	skipped   metric.Int64Counter
}

// RoundResult is the view model and geometry of one round.
type RoundResult struct {
	View         view.RoundView `json:"view"`
	Site         string         `json:"site"`
	Trajectories []Trajectory   `json:"trajectories"`
	Scene        RoundScene     `json:"-"`
}

// New creates a renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.Heatmap == (HeatmapParams{}) {
		opts.Heatmap = DefaultHeatmapParams()
	}
	if opts.Icons == nil {
		return nil, errors.New("renderer needs an icon set")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Renderer{
		weights:  opts.Weights,
		heatmap:  opts.Heatmap,
		icons:    opts.Icons,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	m := meter()
	r.renders, _ = m.Int64Counter("siteview.render.count",
		metric.WithDescription("Scenes rendered by kind"))
	r.duration, _ = m.Float64Histogram("siteview.render.duration",
		metric.WithDescription("Time to render a scene"), metric.WithUnit("ms"))
	r.anomalies, _ = m.Int64Counter("siteview.render.time_anomalies",
		metric.WithDescription("Journey points whose time went backwards"))
	r.skipped, _ = m.Int64Counter("siteview.render.skipped_areas",
		metric.WithDescription("Heatmap areas without a known location"))
	return r, nil
}

// Round filters the selected round and builds one trajectory per visible player.
func (r *Renderer) Round(ds *core.DemoDataset, site *maps.Site, state view.State) (RoundResult, error) {
	rv := view.Round(ds, state)
	if rv.NoData && len(rv.Players) == 0 {
		rv.Message = view.NoDataMessageFor(site.Label)
	}
	res := RoundResult{View: rv, Site: site.Label, Trajectories: []Trajectory{}}

	visible := view.VisiblePlayers(rv.Players, state.Player)
	proj := site.Projection()
	for _, p := range visible {
		t, err := BuildTrajectory(TrajectoryInput{
			Player:  p.Name,
			Color:   p.Color,
			Journey: p.Journey,
			Throws:  p.UtilityThrows,
		}, proj, r.icons, r.weights)
		if errors.Is(err, ErrEmptyJourney) {
			r.logger.Debug("Player has no journey", "round", rv.Round, "player", p.Name)
			continue
		}
		if err != nil {
			return RoundResult{}, fmt.Errorf("round %d player %s: %w", rv.Round, p.Name, err)
		}
		for _, a := range t.Anomalies {
			r.logger.Warn("Journey time went backwards", "round", rv.Round, "player", p.Name, "anomaly", a.String())
		}
		if len(t.Anomalies) > 0 && r.anomalies != nil {
			r.anomalies.Add(context.Background(), int64(len(t.Anomalies)))
		}
		if n := r.outside(site, p.Journey); n > 0 {
			r.logger.Debug("Journey leaves the site bounds", "round", rv.Round, "player", p.Name, "points", n)
		}
		res.Trajectories = append(res.Trajectories, t)
	}

	res.Scene = RoundScene{
		Title:        fmt.Sprintf("%s · Round %d", site.Label, rv.Round),
		Background:   site.Background,
		Trajectories: res.Trajectories,
		Legend:       r.legend(visible),
		NoData:       rv.NoData,
		Message:      rv.Message,
	}
	return res, nil
}

func (r *Renderer) outside(site *maps.Site, journey []core.JourneyPoint) int {
	region := site.Projection().Region
	n := 0
	for _, p := range journey {
		if !region.Contains(p.World()) {
			n++
		}
	}
	return n
}

func (r *Renderer) legend(players []view.VisiblePlayer) []LegendEntry {
	out := make([]LegendEntry, 0, len(players))
	for _, p := range players {
		out = append(out, LegendEntry{
			Name:   p.Name,
			Color:  p.Color,
			Detail: fmt.Sprintf("%s · %s · $%d", p.Equipment.WeaponName(), p.Equipment.ArmorLabel(), p.Equipment.TotalValue),
		})
	}
	return out
}

// WriteRound renders the round scene as SVG.
func (r *Renderer) WriteRound(w io.Writer, ds *core.DemoDataset, site *maps.Site, state view.State) error {
	start := time.Now()
	res, err := r.Round(ds, site, state)
	if err != nil {
		return err
	}
	return r.write(w, "round", start, map[string]string{"site": site.MapID + "/" + site.ID},
		func(buf io.Writer) error { return WriteRoundScene(buf, res.Scene) })
}

// Heatmap builds the area heatmap from aggregate stats, or from the legacy
// position summary when the dataset has no aggregate.
func (r *Renderer) Heatmap(ds *core.DemoDataset, site *maps.Site) (Heatmap, error) {
	entries := EntriesFromStats(ds.Aggregate.PositionStats)
	if len(entries) == 0 {
		entries = EntriesFromPositions(ds.Positions)
	}
	h, err := BuildHeatmap(entries, site, site.Projection(), r.heatmap)
	if err != nil {
		return Heatmap{}, err
	}
	if len(h.Skipped) > 0 {
		r.logger.Debug("Heatmap areas without a location", "areas", h.Skipped)
		if r.skipped != nil {
			r.skipped.Add(context.Background(), int64(len(h.Skipped)))
		}
	}
	return h, nil
}

// WriteHeatmap renders the heatmap scene as SVG.
func (r *Renderer) WriteHeatmap(w io.Writer, ds *core.DemoDataset, site *maps.Site) error {
	start := time.Now()
	h, err := r.Heatmap(ds, site)
	if err != nil {
		return err
	}
	sc := HeatmapScene{Title: site.Label + " · Position heatmap", Background: site.Background, Heatmap: h}
	return r.write(w, "heatmap", start, map[string]string{"site": site.MapID + "/" + site.ID},
		func(buf io.Writer) error { return WriteHeatmapScene(buf, sc) })
}

// WriteChart renders the position frequency chart as SVG.
func (r *Renderer) WriteChart(w io.Writer, ds *core.DemoDataset, n int) error {
	start := time.Now()
	return r.write(w, "chart", start, nil,
		func(buf io.Writer) error { return WriteFrequencyChart(buf, ds.Aggregate.PositionStats, n) })
}

// write buffers a scene so a failed render never leaves partial output.
func (r *Renderer) write(w io.Writer, kind string, start time.Time, tags map[string]string, draw func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	elapsed := time.Since(start)
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	if r.renders != nil {
		r.renders.Add(context.Background(), 1, attrs)
	}
	if r.duration != nil {
		r.duration.Record(context.Background(), float64(elapsed.Microseconds())/1000, attrs)
	}
	if r.observer != nil {
		r.observer.ObserveRender(kind, elapsed, buf.Len(), tags)
	}
	return nil
}
