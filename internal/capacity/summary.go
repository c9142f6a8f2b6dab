package capacity

// Summary describes one day's check-ins at a glance.
type Summary struct {
	Count     int      `json:"count"`
	Latest    *CheckIn `json:"latest,omitempty"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
	Mean      float64  `json:"mean"`
	Increases int      `json:"increases"`
	Drops     int      `json:"drops"`

	// Deviation is the latest overall capacity minus the expected value at its
	// timestamp. Positive means ahead of the baseline.
	Deviation *float64 `json:"deviation,omitempty"`
}

// Summarize aggregates checkIns, which must be sorted ascending by timestamp.
// expectedAt supplies the baseline value at a timestamp; it may be nil.
func Summarize(checkIns []CheckIn, expectedAt func(ts int64) float64) Summary {
	var s Summary
	if len(checkIns) == 0 {
		return s
	}

	s.Count = len(checkIns)
	s.Min = checkIns[0].OverallCapacity
	s.Max = checkIns[0].OverallCapacity
	total := 0.0
	for _, c := range checkIns {
		total += c.OverallCapacity
		if c.OverallCapacity < s.Min {
			s.Min = c.OverallCapacity
		}
		if c.OverallCapacity > s.Max {
			s.Max = c.OverallCapacity
		}
		switch c.Type {
		case TypeIncrease:
			s.Increases++
		case TypeDrop:
			s.Drops++
		}
	}
	s.Mean = total / float64(s.Count)

	latest := checkIns[len(checkIns)-1]
	s.Latest = &latest
	if expectedAt != nil {
		d := latest.OverallCapacity - expectedAt(latest.Timestamp)
		s.Deviation = &d
	}
	return s
}
