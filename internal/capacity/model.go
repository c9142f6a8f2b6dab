package capacity

// Score bounds for every State field.
const (
	MinScore = 0
	MaxScore = 12
)

// Classification thresholds. Both comparisons are exclusive: a diff of exactly
// 0.5 or exactly -2.0 is normal. Drops must be much larger than gains to register.
const (
	IncreaseThreshold = 0.5
	DropThreshold     = -2.0
)

// Overall returns the mean of the three sub-scores.
func Overall(s State) float64 {
	return float64(s.Energy+s.Attention+s.Physical) / 3
}

// Classify labels current against previous. A nil previous (no earlier
// check-in) is always normal.
func Classify(current float64, previous *float64) Type {
	if previous == nil {
		return TypeNormal
	}
	diff := current - *previous
	switch {
	case diff > IncreaseThreshold:
		return TypeIncrease
	case diff < DropThreshold:
		return TypeDrop
	default:
		return TypeNormal
	}
}
