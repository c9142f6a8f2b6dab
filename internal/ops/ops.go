package ops

import (
	"context"
	"time"
)

// Storage keys. The data key is suffixed with the user key; the active-user
// key is process-wide.
const (
	DataKeyPrefix = "capacity-tracker-data-"
	ActiveUserKey = "capacity-tracker-key"
)

// Prune defaults
const (
	DefaultPruneAfterDays = 30
	MaxImportFileSize     = 10 << 20
)

// DataKey returns the storage key holding userID's check-ins.
func DataKey(userID string) string {
	return DataKeyPrefix + userID
}

// KV is the key-value storage the store and session persist through.
// db.KV implements it over SQLite.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Clock supplies the current instant and the location that defines day
// boundaries.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a Clock backed by time.Now in loc (time.Local if nil).
func SystemClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// FixedClock returns a Clock frozen at t, in t's location.
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Current returns the clock's now in its location.
func (c Clock) Current() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.location())
}

// Today returns local midnight of the current day.
func (c Clock) Today() time.Time {
	return StartOfDay(c.Current())
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
