package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

func TestSuggestDefaults_FirstOfDay(t *testing.T) {
	coll := newCollection(testUser, StartOfDay(testNow()), nil)

	d := SuggestDefaults(coll, testNow())
	assert.True(t, d.FirstOfDay)
	assert.Equal(t, full(12), d.Capacity)
	assert.Equal(t, "15:00", d.Time)
}

func TestSuggestDefaults_UsesLatest(t *testing.T) {
	coll := newCollection(testUser, StartOfDay(testNow()), []capacity.CheckIn{
		{ID: "b", Timestamp: at(11, 0), Capacity: capacity.State{Energy: 4, Attention: 5, Physical: 6}},
		{ID: "a", Timestamp: at(9, 0), Capacity: full(10)},
	})

	d := SuggestDefaults(coll, testNow())
	assert.False(t, d.FirstOfDay)
	assert.Equal(t, capacity.State{Energy: 4, Attention: 5, Physical: 6}, d.Capacity)
}

func TestParseClockTime(t *testing.T) {
	day := StartOfDay(testNow())

	ts, err := ParseClockTime(day, "09:17")
	require.NoError(t, err)
	assert.Equal(t, at(9, 17), ts)

	ts, err = ParseClockTime(day, " 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, at(23, 59), ts)

	got := time.UnixMilli(ts).In(testLoc)
	assert.Equal(t, 10, got.Day())
}

func TestParseClockTime_Invalid(t *testing.T) {
	day := StartOfDay(testNow())
	for _, v := range []string{"", "9", "25:00", "12:60", "noon", "12:00:00"} {
		_, err := ParseClockTime(day, v)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "value %q", v)
	}
}
