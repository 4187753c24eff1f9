package render

import (
	"errors"
	"io"

	"github.com/csdemo/siteview/pkg/core"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoChartData is returned when there is nothing to plot
var ErrNoChartData = errors.New("no position statistics to chart")

// WriteFrequencyChart renders the top n position frequencies as an SVG bar chart.
func WriteFrequencyChart(w io.Writer, stats []core.AreaAggregateStat, n int) error {
	if n <= 0 || n > len(stats) {
		n = len(stats)
	}
	if n == 0 {
		return ErrNoChartData
	}

	barColor := drawing.ColorFromHex("3b82f6")
	bars := make([]chart.Value, 0, n)
	maxValue := 1.0
	for _, s := range stats[:n] {
		pct := s.OverallFrequency * 100
		if pct > maxValue {
			maxValue = pct
		}
		bars = append(bars, chart.Value{
			Label: s.Area,
			Value: pct,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	graph := chart.BarChart{
		Title:      "Position frequency (%)",
		Width:      1024,
		Height:     512,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue},
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}
