package capacity

import (
	"regexp"

	"github.com/hpungsan/captrack/internal/errors"
)

var userKeyPattern = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)

// Validate checks every field is within [MinScore, MaxScore].
func Validate(s State) error {
	fields := []struct {
		name  string
		value int
	}{
		{"energy", s.Energy},
		{"attention", s.Attention},
		{"physical", s.Physical},
	}
	for _, f := range fields {
		if f.value < MinScore || f.value > MaxScore {
			return errors.NewCapacityOutOfRange(f.name, f.value, MinScore, MaxScore)
		}
	}
	return nil
}

// ValidateUserKey checks key is "0x" followed by one or more hex digits.
// The store itself treats keys as opaque; login surfaces call this.
func ValidateUserKey(key string) error {
	if !userKeyPattern.MatchString(key) {
		return errors.NewInvalidUserKey(key)
	}
	return nil
}

// ValidateRecord checks a decoded record matches the stored schema.
// Used when loading persisted or imported data.
func ValidateRecord(c CheckIn) error {
	if c.ID == "" {
		return errors.NewInvalidRequest("check-in id is required")
	}
	if !c.Type.Valid() {
		return errors.NewInvalidRequest("unknown check-in type: " + string(c.Type))
	}
	return Validate(c.Capacity)
}
