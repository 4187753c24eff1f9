package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/csdemo/siteview/pkg/core"
)

// CanvasSize is the width and height of every scene in SVG units.
// One percent of the site maps to unitsPerPercent units.
const (
	CanvasSize      = 1000
	unitsPerPercent = CanvasSize / 100
)

// LegendEntry is one line of the scene legend.
type LegendEntry struct {
	Name   string
	Color  string
	Detail string
}

// RoundScene is everything drawn for one round view.
type RoundScene struct {
	Title        string
	Background   string
	Trajectories []Trajectory
	Legend       []LegendEntry
	NoData       bool
	Message      string
}

// HeatmapScene is the aggregate area view.
type HeatmapScene struct {
	Title      string
	Background string
	Heatmap    Heatmap
}

func units(pct float64) int {
	return int(math.Round(pct * unitsPerPercent))
}

func unitsPt(p core.ScreenPoint) (int, int) {
	return units(p.X), units(p.Y)
}

func startCanvas(canvas *svg.SVG, title, background string) {
	canvas.Start(CanvasSize, CanvasSize,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, CanvasSize, CanvasSize),
		`style="overflow:visible"`,
	)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Rect(0, 0, CanvasSize, CanvasSize, "fill:#111827")
	if background != "" {
		canvas.Image(0, 0, CanvasSize, CanvasSize, background, `preserveAspectRatio="none"`)
	}
}

// WriteRoundScene draws trajectories first and utility markers on top of them.
func WriteRoundScene(w io.Writer, sc RoundScene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	startCanvas(canvas, sc.Title, sc.Background)

	if sc.NoData {
		writeNoData(canvas, sc.Message)
		canvas.End()
		return ew.err
	}

	canvas.Gstyle("fill:none;stroke-linecap:round")
	for _, t := range sc.Trajectories {
		for _, seg := range t.Segments {
			x1, y1 := unitsPt(seg.From)
			x2, y2 := unitsPt(seg.To)
			canvas.Line(x1, y1, x2, y2, fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f",
				t.Color, seg.Stroke*unitsPerPercent, seg.Opacity))
		}
	}
	canvas.Gend()

	for _, t := range sc.Trajectories {
		x, y := unitsPt(t.Entry.At)
		canvas.Circle(x, y, units(t.Entry.Radius), fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:#ffffff;stroke-width:%.1f",
			t.Color, t.Entry.Opacity, t.Entry.StrokeWidth*unitsPerPercent))
		x, y = unitsPt(t.Exit.At)
		canvas.Circle(x, y, units(t.Exit.Radius), fmt.Sprintf("fill:%s;fill-opacity:%.2f", t.Color, t.Exit.Opacity))
	}

	canvas.Gstyle("font-size:30px;text-anchor:middle;dominant-baseline:central;cursor:help")
	for _, t := range sc.Trajectories {
		for _, u := range t.Utility {
			x, y := unitsPt(u.At)
			canvas.Gstyle("opacity:0.95")
			canvas.Title(u.Tooltip)
			canvas.Text(x, y, u.Icon)
			canvas.Gend()
		}
	}
	canvas.Gend()

	writeLegend(canvas, sc.Legend)
	canvas.End()
	return ew.err
}

// WriteHeatmapScene draws one translucent circle per area, largest first so
// small areas stay visible.
func WriteHeatmapScene(w io.Writer, sc HeatmapScene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	startCanvas(canvas, sc.Title, sc.Background)

	blobs := sc.Heatmap.Blobs
	order := make([]int, len(blobs))
	for i := range order {
		order[i] = i
	}
	stableSortBySizeDesc(order, blobs)

	for _, i := range order {
		b := blobs[i]
		x, y := unitsPt(b.At)
		canvas.Gstyle("cursor:help")
		canvas.Title(fmt.Sprintf("%s · %.1f%% (%d)", b.Area, b.Percentage, b.Count))
		canvas.Circle(x, y, int(math.Round(b.Size/2)), fmt.Sprintf("fill:%s;fill-opacity:%g;stroke:%s;stroke-width:2",
			b.Color.Hex(), HeatmapAlpha, b.Color.Hex()))
		canvas.Text(x, y, fmt.Sprintf("%.0f%%", b.Percentage),
			"font-size:20px;fill:#ffffff;text-anchor:middle;dominant-baseline:central")
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

func writeNoData(canvas *svg.SVG, message string) {
	if message == "" {
		message = "No data"
	}
	canvas.Rect(0, 0, CanvasSize, CanvasSize, "fill:#000000;fill-opacity:0.5")
	canvas.Text(CanvasSize/2, CanvasSize/2, message,
		"font-size:36px;fill:#e5e7eb;text-anchor:middle;dominant-baseline:central")
}

func writeLegend(canvas *svg.SVG, legend []LegendEntry) {
	if len(legend) == 0 {
		return
	}
	const rowHeight = 34
	canvas.Rect(10, 10, 360, 20+rowHeight*len(legend), "fill:#000000;fill-opacity:0.6")
	canvas.Gstyle("font-size:22px;fill:#f9fafb")
	for i, e := range legend {
		y := 30 + i*rowHeight
		canvas.Circle(32, y+8, 9, "fill:"+e.Color)
		label := e.Name
		if e.Detail != "" {
			label += " · " + e.Detail
		}
		canvas.Text(52, y+16, label)
	}
	canvas.Gend()
}

func stableSortBySizeDesc(order []int, blobs []Blob) {
	// insertion sort keeps equal sizes in input order
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && blobs[order[j]].Size > blobs[order[j-1]].Size; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
