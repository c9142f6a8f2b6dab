package timeline

import (
	"sort"
	"time"

	"github.com/hpungsan/captrack/internal/capacity"
)

// Point is one entry of the chartable series. Baseline-only points carry just
// Time, Timestamp, and Expected; Overall is nil for them.
type Point struct {
	Time      string  `json:"time"`
	Timestamp int64   `json:"timestamp"`
	Expected  float64 `json:"expected"`

	Overall  *float64        `json:"overallCapacity,omitempty"`
	Capacity *capacity.State `json:"capacity,omitempty"`
	Journal  string          `json:"journal,omitempty"`
	Type     capacity.Type   `json:"type,omitempty"`

	// CheckIns lists every check-in merged into this point, oldest first.
	// More than one means several check-ins share the same minute.
	CheckIns []capacity.CheckIn `json:"checkIns,omitempty"`
}

// HasActual reports whether the point carries check-in data.
func (p Point) HasActual() bool {
	return p.Overall != nil
}

// Reconcile merges day's hourly baseline with checkIns into one series keyed by
// hour:minute label and sorted by timestamp. A check-in on an hourly label
// augments that baseline point instead of duplicating it. When several
// check-ins share a label, the latest one supplies the point's fields and all
// of them stay listed in CheckIns.
func Reconcile(day time.Time, checkIns []capacity.CheckIn) []Point {
	loc := day.Location()

	sorted := make([]capacity.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	byLabel := make(map[string]*Point)
	for _, p := range Hourly(day) {
		p := p
		byLabel[p.Time] = &p
	}

	for _, c := range sorted {
		label := Label(time.UnixMilli(c.Timestamp).In(loc))
		p, ok := byLabel[label]
		if !ok {
			p = &Point{Time: label}
			byLabel[label] = p
		}

		overall := c.OverallCapacity
		state := c.Capacity
		p.Timestamp = c.Timestamp
		p.Expected = ExpectedAt(day, c.Timestamp)
		p.Overall = &overall
		p.Capacity = &state
		p.Journal = c.Journal
		p.Type = c.Type
		p.CheckIns = append(p.CheckIns, c)
	}

	points := make([]Point, 0, len(byLabel))
	for _, p := range byLabel {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Timestamp != points[j].Timestamp {
			return points[i].Timestamp < points[j].Timestamp
		}
		return points[i].Time < points[j].Time
	})
	return points
}
