package timeline

import (
	"time"

	"github.com/hpungsan/captrack/internal/capacity"
)

// Baseline shape: full capacity at 08:00, losing one point per hour, with one
// reference point per hour through 20:00.
const (
	AnchorHour    = 8
	BaselineHours = 13
	BaselineStart = float64(capacity.MaxScore)
)

// LabelFormat is the hour:minute label points are merged on.
const LabelFormat = "15:04"

// Anchor returns 08:00 on day's calendar date in day's location.
func Anchor(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), AnchorHour, 0, 0, 0, day.Location())
}

// Hourly returns the reference points for day: 08:00 through 20:00 with
// expected values 12 down to 0. It does not depend on any check-in data.
func Hourly(day time.Time) []Point {
	anchor := Anchor(day)
	points := make([]Point, 0, BaselineHours)
	for i := 0; i < BaselineHours; i++ {
		at := anchor.Add(time.Duration(i) * time.Hour)
		points = append(points, Point{
			Time:      Label(at),
			Timestamp: at.UnixMilli(),
			Expected:  BaselineStart - float64(i),
		})
	}
	return points
}

// ExpectedAt applies the baseline formula at an exact instant: 12 minus the
// fractional hours since 08:00, kept within [0, 12].
func ExpectedAt(day time.Time, ts int64) float64 {
	hours := float64(ts-Anchor(day).UnixMilli()) / float64(time.Hour/time.Millisecond)
	v := BaselineStart - hours
	if v < 0 {
		return 0
	}
	if v > BaselineStart {
		return BaselineStart
	}
	return v
}

// Label formats t as the hour:minute merge key.
func Label(t time.Time) string {
	return t.Format(LabelFormat)
}
