package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/timeline"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 640
	chartHeight  = 260
	chartPadLeft = 32
	chartPadTop  = 12
	chartPadEdge = 16
	chartPadBase = 28
)

// Chart is a server-rendered SVG line chart of a reconciled timeline.
type Chart struct {
	Width, Height int
	Expected      string // polyline points
	Actual        string // polyline points, empty without check-ins
	Dots          []ChartDot
	YTicks        []ChartTick
	XTicks        []ChartTick
}

// ChartDot marks one actual check-in.
type ChartDot struct {
	X, Y  float64
	Type  capacity.Type
	Label string
}

// ChartTick is an axis label at a position.
type ChartTick struct {
	Pos   float64
	Label string
}

// buildChart lays out points on a 0-12 Y axis and a time X axis spanning the
// first to the last point.
func buildChart(points []timeline.Point) Chart {
	c := Chart{Width: chartWidth, Height: chartHeight}
	if len(points) == 0 {
		return c
	}

	plotW := float64(chartWidth - chartPadLeft - chartPadEdge)
	plotH := float64(chartHeight - chartPadTop - chartPadBase)
	minTS := points[0].Timestamp
	span := float64(points[len(points)-1].Timestamp - minTS)

	x := func(ts int64) float64 {
		if span == 0 {
			return float64(chartPadLeft) + plotW/2
		}
		return float64(chartPadLeft) + plotW*float64(ts-minTS)/span
	}
	y := func(v float64) float64 {
		return float64(chartPadTop) + plotH*(1-v/float64(capacity.MaxScore))
	}

	var expected, actual []string
	for _, p := range points {
		px := x(p.Timestamp)
		expected = append(expected, fmt.Sprintf("%.1f,%.1f", px, y(p.Expected)))
		if p.Overall != nil {
			py := y(*p.Overall)
			actual = append(actual, fmt.Sprintf("%.1f,%.1f", px, py))
			c.Dots = append(c.Dots, ChartDot{
				X:     px,
				Y:     py,
				Type:  p.Type,
				Label: fmt.Sprintf("%s %.1f", p.Time, *p.Overall),
			})
		}
		if label, ok := hourTick(p.Time); ok {
			c.XTicks = append(c.XTicks, ChartTick{Pos: px, Label: label})
		}
	}
	c.Expected = strings.Join(expected, " ")
	c.Actual = strings.Join(actual, " ")

	for v := 0; v <= capacity.MaxScore; v += 3 {
		c.YTicks = append(c.YTicks, ChartTick{Pos: y(float64(v)), Label: fmt.Sprint(v)})
	}
	return c
}

// hourTick returns the x-axis label for an on-the-hour point label.
func hourTick(label string) (string, bool) {
	t, err := time.Parse(timeline.LabelFormat, label)
	if err != nil || t.Minute() != 0 {
		return "", false
	}
	return t.Format("15"), true
}
