package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

// ClockFormat is the HH:MM layout check-in forms use for time of day.
const ClockFormat = "15:04"

// FormDefaults are the values a check-in form starts with.
type FormDefaults struct {
	Capacity   capacity.State `json:"capacity"`
	Time       string         `json:"time"`
	FirstOfDay bool           `json:"first_of_day"`
}

// SuggestDefaults returns full capacity for the first check-in of the day,
// otherwise the latest check-in's capacity.
func SuggestDefaults(coll *Collection, now time.Time) FormDefaults {
	d := FormDefaults{
		Capacity: capacity.State{
			Energy:    capacity.MaxScore,
			Attention: capacity.MaxScore,
			Physical:  capacity.MaxScore,
		},
		Time:       now.Format(ClockFormat),
		FirstOfDay: true,
	}
	if latest := coll.Latest(); latest != nil {
		d.Capacity = latest.Capacity
		d.FirstOfDay = false
	}
	return d
}

// ParseClockTime returns the epoch ms of HH:MM on day's date in day's
// location. Seconds are zero.
func ParseClockTime(day time.Time, value string) (int64, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(ClockFormat, value)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("time must be HH:MM, got %q", value))
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()).UnixMilli(), nil
}
