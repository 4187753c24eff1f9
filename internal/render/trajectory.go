// Package render turns filtered round data into screen space geometry and
// writes it out as SVG scenes and charts. Everything here is deterministic.
package render

import (
	"errors"
	"fmt"

	"github.com/csdemo/siteview/internal/geo"
	"github.com/csdemo/siteview/pkg/core"
)

// ErrEmptyJourney is returned for a player with no sampled positions
var ErrEmptyJourney = errors.New("journey has no points")

// Icons resolves utility types to display icons.
type Icons interface {
	Icon(utilityType string) string
}

// Segment is the path between two consecutive journey points.
type Segment struct {
	From    core.ScreenPoint `json:"from"`
	To      core.ScreenPoint `json:"to"`
	Dwell   float64          `json:"dwell"`
	Stroke  float64          `json:"stroke"`
	Opacity float64          `json:"opacity"`
}

// Anomaly records a journey point whose time went backwards.
type Anomaly struct {
	Index int     `json:"index"`
	Dwell float64 `json:"dwell"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("point %d: time decreased by %.3fs", a.Index, -a.Dwell)
}

// Marker is the entry or exit dot of a trajectory.
type Marker struct {
	At          core.ScreenPoint `json:"at"`
	Radius      float64          `json:"radius"`
	Opacity     float64          `json:"opacity"`
	StrokeWidth float64          `json:"strokeWidth"`
}

// UtilityMarker is an icon placed where a grenade was thrown.
type UtilityMarker struct {
	At      core.ScreenPoint `json:"at"`
	Type    string           `json:"type"`
	Icon    string           `json:"icon"`
	Time    float64          `json:"time"`
	Tooltip string           `json:"tooltip"`
}

// Trajectory is the rendered movement of one player in one round.
type Trajectory struct {
	Player    string             `json:"player"`
	Color     string             `json:"color"`
	Points    []core.ScreenPoint `json:"points"`
	Segments  []Segment          `json:"segments"`
	Entry     Marker             `json:"entry"`
	Exit      Marker             `json:"exit"`
	Utility   []UtilityMarker    `json:"utility"`
	Anomalies []Anomaly          `json:"anomalies,omitempty"`
	Length    float64            `json:"length"`
}

// TrajectoryInput is one player's journey and throws.
type TrajectoryInput struct {
	Player  string
	Color   string
	Journey []core.JourneyPoint
	Throws  []core.UtilityThrow
}

// Marker geometry in percent units.
const (
	entryRadius      = 1.2
	entryStroke      = 0.3
	entryOpacity     = 0.9
	exitRadius       = 0.8
	exitOpacity      = 0.7
	minDwellDivisor  = 1.0
	unknownUtilLabel = "Unknown utility"
)

// BuildTrajectory maps a journey into screen space and weights each segment
// by the time spent on it. Negative dwell is clamped to zero and recorded as
// an anomaly. A single point yields no segments, with entry and exit markers
// at the same coordinate.
func BuildTrajectory(in TrajectoryInput, proj geo.Projection, icons Icons, w Weights) (Trajectory, error) {
	if len(in.Journey) == 0 {
		return Trajectory{}, ErrEmptyJourney
	}

	world := make([]core.WorldPoint, len(in.Journey))
	for i, p := range in.Journey {
		world[i] = p.World()
	}
	points, err := proj.ProjectAll(world)
	if err != nil {
		return Trajectory{}, err
	}

	t := Trajectory{
		Player:   in.Player,
		Color:    in.Color,
		Points:   points,
		Segments: make([]Segment, 0, len(points)-1),
		Utility:  make([]UtilityMarker, 0, len(in.Throws)),
	}

	dwells := make([]float64, 0, len(points)-1)
	maxDwell := minDwellDivisor
	for i := 1; i < len(in.Journey); i++ {
		d := in.Journey[i].Time - in.Journey[i-1].Time
		if d < 0 {
			t.Anomalies = append(t.Anomalies, Anomaly{Index: i, Dwell: d})
			d = 0
		}
		if d > maxDwell {
			maxDwell = d
		}
		dwells = append(dwells, d)
	}
	for i, d := range dwells {
		stroke, opacity := w.at(d / maxDwell)
		t.Segments = append(t.Segments, Segment{
			From:    points[i],
			To:      points[i+1],
			Dwell:   d,
			Stroke:  stroke,
			Opacity: opacity,
		})
	}

	t.Entry = Marker{At: points[0], Radius: entryRadius, Opacity: entryOpacity, StrokeWidth: entryStroke}
	t.Exit = Marker{At: points[len(points)-1], Radius: exitRadius, Opacity: exitOpacity}
	if len(points) > 1 {
		t.Length = geo.PathLength(points)
	}

	for _, th := range in.Throws {
		at, err := proj.Project(th.World())
		if err != nil {
			return Trajectory{}, err
		}
		label := th.Type
		if label == "" {
			label = unknownUtilLabel
		}
		t.Utility = append(t.Utility, UtilityMarker{
			At:      at,
			Type:    th.Type,
			Icon:    icons.Icon(th.Type),
			Time:    th.Time,
			Tooltip: fmt.Sprintf("%s · %.1fs", label, th.Time),
		})
	}
	return t, nil
}
