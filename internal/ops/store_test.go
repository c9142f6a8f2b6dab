package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

func TestLoad_Missing(t *testing.T) {
	s, _ := newTestStore(t)

	coll, ok := s.Load(context.Background(), testUser)
	assert.False(t, ok)
	assert.Equal(t, testUser, coll.UserID)
	assert.Empty(t, coll.CheckIns)
	assert.Equal(t, StartOfDay(testNow()), coll.DayStart)
}

func TestLoad_FiltersToTodayAndSorts(t *testing.T) {
	s, kv := newTestStore(t)
	records := []capacity.CheckIn{
		{ID: "c", Timestamp: at(11, 0), Capacity: full(6), OverallCapacity: 6, Type: capacity.TypeDrop},
		{ID: "old", Timestamp: daysAgo(1, 20), Capacity: full(3), OverallCapacity: 3, Type: capacity.TypeNormal},
		{ID: "a", Timestamp: at(0, 0), Capacity: full(12), OverallCapacity: 12, Type: capacity.TypeNormal},
		{ID: "b", Timestamp: at(9, 30), Capacity: full(9), OverallCapacity: 9, Type: capacity.TypeDrop},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	kv.data[DataKey(testUser)] = string(data)

	coll, ok := s.Load(context.Background(), testUser)
	require.True(t, ok)
	require.Len(t, coll.CheckIns, 3)
	assert.Equal(t, "a", coll.CheckIns[0].ID, "midnight belongs to today")
	assert.Equal(t, "b", coll.CheckIns[1].ID)
	assert.Equal(t, "c", coll.CheckIns[2].ID)
	assert.Equal(t, 1, coll.HistoryLen())
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"wrong shape", `{"id":"x"}`},
		{"missing id", `[{"timestamp":1,"capacity":{"energy":1,"attention":1,"physical":1},"type":"normal"}]`},
		{"unknown type", `[{"id":"x","timestamp":1,"capacity":{"energy":1,"attention":1,"physical":1},"type":"sideways"}]`},
		{"capacity out of range", `[{"id":"x","timestamp":1,"capacity":{"energy":13,"attention":1,"physical":1},"type":"normal"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newTestStore(t)
			kv.data[DataKey(testUser)] = tt.raw

			coll, ok := s.Load(context.Background(), testUser)
			assert.False(t, ok)
			assert.Empty(t, coll.CheckIns)
			assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.MalformedLoads))
		})
	}
}

func TestLoad_ReadFailureIsEmpty(t *testing.T) {
	s, kv := newTestStore(t)
	kv.getErr = fmt.Errorf("disk on fire")

	coll, ok := s.Load(context.Background(), testUser)
	assert.False(t, ok)
	assert.Empty(t, coll.CheckIns)
	assert.True(t, coll.unreadable)
}

func TestAddCheckIn_ReadFailureDoesNotOverwrite(t *testing.T) {
	s, kv := newTestStore(t)
	seeded := []capacity.CheckIn{
		{ID: "old", Timestamp: daysAgo(3, 10), Capacity: full(5), OverallCapacity: 5, Type: capacity.TypeNormal},
		{ID: "today", Timestamp: at(9, 0), Capacity: full(8), OverallCapacity: 8, Type: capacity.TypeNormal},
	}
	data, err := json.Marshal(seeded)
	require.NoError(t, err)
	kv.data[DataKey(testUser)] = string(data)

	kv.getErr = fmt.Errorf("database is locked")
	coll, _ := s.Load(context.Background(), testUser)
	kv.getErr = nil

	out, err := s.AddCheckIn(context.Background(), coll, AddInput{Capacity: full(6), Timestamp: at(10, 0)})
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	assert.Len(t, out.Collection.CheckIns, 1, "the entry is still returned")
	assert.Zero(t, kv.setCnt)
	assert.Equal(t, string(data), kv.data[DataKey(testUser)])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PersistFailures))
}

func TestAdd_ReadFailureDoesNotOverwrite(t *testing.T) {
	s, kv := newTestStore(t)
	kv.data[DataKey(testUser)] = `[{"id":"old","timestamp":1000,"capacity":{"energy":5,"attention":5,"physical":5},"journal":"","overallCapacity":5,"type":"normal"}]`
	kv.getErr = fmt.Errorf("database is locked")

	out, err := s.Add(context.Background(), testUser, AddInput{Capacity: full(6), Timestamp: at(10, 0)})
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	assert.Zero(t, kv.setCnt)
	assert.Contains(t, kv.data[DataKey(testUser)], `"id":"old"`)
}

func TestAdd_ReadsStoredCollection(t *testing.T) {
	s := newDBStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, testUser, AddInput{Capacity: full(12), Timestamp: at(8, 0)})
	require.NoError(t, err)
	_, err = s.Add(ctx, testUser, AddInput{Capacity: full(4), Timestamp: at(14, 0)})
	require.NoError(t, err)

	out, err := s.Add(ctx, testUser, AddInput{Capacity: full(9), Timestamp: at(11, 0)})
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	assert.Equal(t, capacity.TypeDrop, out.CheckIn.Type, "classified against the stored 08:00 entry")
	assert.Len(t, out.Collection.CheckIns, 3)
}

func TestAdd_Validation(t *testing.T) {
	s, kv := newTestStore(t)

	_, err := s.Add(context.Background(), "", AddInput{Capacity: full(6)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.Add(context.Background(), testUser, AddInput{Capacity: full(13)})
	assert.True(t, errors.Is(err, errors.ErrCapacityOutOfRange))
	assert.Zero(t, kv.setCnt)
}

func TestAdd_ConcurrentAddsAllLand(t *testing.T) {
	s := newDBStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Add(ctx, testUser, AddInput{Capacity: full(10)})
			if err == nil && !out.Persisted {
				err = fmt.Errorf("check-in not persisted")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := s.Log(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestAddCheckIn_FirstIsNormal(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	out := mustAdd(t, s, coll, full(12), at(9, 0))

	assert.Equal(t, capacity.TypeNormal, out.CheckIn.Type)
	assert.Equal(t, 12.0, out.CheckIn.OverallCapacity)
	assert.Len(t, out.CheckIn.ID, 26)
	assert.True(t, out.Persisted)
	assert.Empty(t, coll.CheckIns, "input collection is not modified")
	assert.Len(t, out.Collection.CheckIns, 1)
}

func TestAddCheckIn_Increase(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	coll = mustAdd(t, s, coll, full(11), at(9, 0)).Collection
	out := mustAdd(t, s, coll, full(12), at(10, 0))

	assert.Equal(t, capacity.TypeIncrease, out.CheckIn.Type)
}

func TestAddCheckIn_Drop(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	coll = mustAdd(t, s, coll, full(12), at(9, 0)).Collection
	out := mustAdd(t, s, coll, full(9), at(10, 0))

	assert.Equal(t, capacity.TypeDrop, out.CheckIn.Type)
	assert.Equal(t, 9.0, out.CheckIn.OverallCapacity)
}

func TestAddCheckIn_BackfillUsesChronologicalPredecessor(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	coll = mustAdd(t, s, coll, full(12), at(8, 0)).Collection
	coll = mustAdd(t, s, coll, full(4), at(14, 0)).Collection

	// Added last in call order, but its predecessor is the 08:00 entry (12),
	// not the 14:00 entry (4): 12 -> 9 is a drop, 4 -> 9 would be an increase.
	out := mustAdd(t, s, coll, full(9), at(11, 0))
	assert.Equal(t, capacity.TypeDrop, out.CheckIn.Type)

	// Stored types are never recomputed, even though 14:00 now follows 11:00.
	require.Len(t, out.Collection.CheckIns, 3)
	assert.Equal(t, at(11, 0), out.Collection.CheckIns[1].Timestamp)
	assert.Equal(t, capacity.TypeDrop, out.Collection.CheckIns[2].Type)
}

func TestAddCheckIn_EqualTimestampIsNotPredecessor(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	coll = mustAdd(t, s, coll, full(12), at(9, 0)).Collection
	out := mustAdd(t, s, coll, full(3), at(9, 0))

	assert.Equal(t, capacity.TypeNormal, out.CheckIn.Type)
}

func TestAddCheckIn_AlwaysSorted(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	stamps := []int64{at(14, 0), at(9, 0), at(12, 30), at(9, 0), at(0, 1), at(23, 59), at(12, 29)}
	for i, ts := range stamps {
		coll = mustAdd(t, s, coll, full(i), ts).Collection
		for j := 1; j < len(coll.CheckIns); j++ {
			require.LessOrEqual(t, coll.CheckIns[j-1].Timestamp, coll.CheckIns[j].Timestamp, "after add %d", i)
		}
	}
	require.Len(t, coll.CheckIns, len(stamps))
}

func TestAddCheckIn_ZeroTimestampIsNow(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	out := mustAdd(t, s, coll, full(6), 0)
	assert.Equal(t, testNow().UnixMilli(), out.CheckIn.Timestamp)
}

func TestAddCheckIn_TrimsJournal(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	out, err := s.AddCheckIn(context.Background(), coll, AddInput{
		Capacity:  full(6),
		Journal:   "  slept badly \n",
		Timestamp: at(9, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "slept badly", out.CheckIn.Journal)
}

func TestAddCheckIn_RejectsOutOfRange(t *testing.T) {
	s, kv := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	_, err := s.AddCheckIn(context.Background(), coll, AddInput{
		Capacity:  capacity.State{Energy: 12, Attention: 13, Physical: 0},
		Timestamp: at(9, 0),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCapacityOutOfRange))
	assert.Contains(t, err.Error(), "attention")
	assert.Zero(t, kv.setCnt)
}

func TestAddCheckIn_RejectsBeforeDayStart(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	_, err := s.AddCheckIn(context.Background(), coll, AddInput{Capacity: full(6), Timestamp: daysAgo(1, 23)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestAddCheckIn_RequiresCollection(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddCheckIn(context.Background(), nil, AddInput{Capacity: full(6)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestAddCheckIn_Cancelled(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AddCheckIn(ctx, coll, AddInput{Capacity: full(6), Timestamp: at(9, 0)})
	assert.True(t, errors.Is(err, errors.ErrCancelled))
}

func TestAddCheckIn_PersistFailureKeepsEntry(t *testing.T) {
	s, kv := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)
	kv.setErr = fmt.Errorf("quota exceeded")

	out, err := s.AddCheckIn(context.Background(), coll, AddInput{Capacity: full(6), Timestamp: at(9, 0)})
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	require.Len(t, out.Collection.CheckIns, 1)
	assert.Equal(t, out.CheckIn, out.Collection.CheckIns[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PersistFailures))

	// Later adds build on the in-memory collection.
	kv.setErr = nil
	next := mustAdd(t, s, out.Collection, full(12), at(10, 0))
	assert.True(t, next.Persisted)
	assert.Len(t, next.Collection.CheckIns, 2)
}

func TestAddCheckIn_PreservesHistory(t *testing.T) {
	s, kv := newTestStore(t)
	old := []capacity.CheckIn{
		{ID: "old", Timestamp: daysAgo(3, 10), Capacity: full(5), OverallCapacity: 5, Type: capacity.TypeNormal},
	}
	data, err := json.Marshal(old)
	require.NoError(t, err)
	kv.data[DataKey(testUser)] = string(data)

	coll, _ := s.Load(context.Background(), testUser)
	require.Empty(t, coll.CheckIns)
	mustAdd(t, s, coll, full(12), at(9, 0))

	var stored []capacity.CheckIn
	require.NoError(t, json.Unmarshal([]byte(kv.data[DataKey(testUser)]), &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "old", stored[0].ID)
}

func TestAddCheckIn_UniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		out := mustAdd(t, s, coll, full(6), at(9, 0))
		require.False(t, seen[out.CheckIn.ID])
		seen[out.CheckIn.ID] = true
	}
}

func TestReload_RoundTrip(t *testing.T) {
	s := newDBStore(t)
	ctx := context.Background()
	coll, ok := s.Load(ctx, testUser)
	require.False(t, ok)

	coll = mustAdd(t, s, coll, full(12), at(8, 30)).Collection
	coll = mustAdd(t, s, coll, capacity.State{Energy: 9, Attention: 6, Physical: 3}, at(13, 15)).Collection
	out, err := s.AddCheckIn(ctx, coll, AddInput{Capacity: full(7), Journal: "lunch **dip**", Timestamp: at(11, 0)})
	require.NoError(t, err)
	require.True(t, out.Persisted)

	reloaded, ok := s.Load(ctx, testUser)
	require.True(t, ok)
	assert.Equal(t, out.Collection.CheckIns, reloaded.CheckIns)
	assert.Equal(t, out.Collection.DayStart, reloaded.DayStart)
}

func TestDurableFormat(t *testing.T) {
	s, kv := newTestStore(t)
	coll, _ := s.Load(context.Background(), testUser)
	mustAdd(t, s, coll, capacity.State{Energy: 9, Attention: 6, Physical: 3}, at(9, 0))

	raw := kv.data[DataKey(testUser)]
	require.True(t, strings.HasPrefix(raw, "["))
	for _, field := range []string{`"id"`, `"timestamp"`, `"capacity"`, `"energy":9`, `"attention":6`, `"physical":3`, `"journal":""`, `"overallCapacity":6`, `"type":"normal"`} {
		assert.Contains(t, raw, field)
	}
}
