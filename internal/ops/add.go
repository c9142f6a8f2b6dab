package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

// AddInput contains parameters for the AddCheckIn operation.
type AddInput struct {
	Capacity capacity.State
	Journal  string
	// Timestamp is epoch ms; zero means now.
	Timestamp int64
}

// AddOutput contains the result of the AddCheckIn operation.
type AddOutput struct {
	CheckIn    capacity.CheckIn `json:"check_in"`
	Collection *Collection      `json:"-"`
	// Persisted is false when the write failed; the check-in still exists
	// in Collection for the rest of the session.
	Persisted bool `json:"persisted"`
}

// Add records a check-in for userID. The stored collection is read,
// classified against and written back under the store's write lock, so
// concurrent adds for the same user all land.
func (s *Store) Add(ctx context.Context, userID string, input AddInput) (*AddOutput, error) {
	if userID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	if err := capacity.Validate(input.Capacity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, _ := s.Load(ctx, userID)
	return s.add(ctx, coll, input)
}

// AddCheckIn records a check-in on an already loaded collection and returns
// the updated copy; coll is not modified. Use it to keep building on a
// collection whose last save failed.
func (s *Store) AddCheckIn(ctx context.Context, coll *Collection, input AddInput) (*AddOutput, error) {
	if coll == nil || coll.UserID == "" {
		return nil, errors.NewInvalidRequest("a loaded collection is required")
	}
	if err := capacity.Validate(input.Capacity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.add(ctx, coll, input)
}

// add classifies and saves. The caller holds s.mu.
func (s *Store) add(ctx context.Context, coll *Collection, input AddInput) (*AddOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("add check-in")
	}

	now := s.clock.Current()
	ts := input.Timestamp
	if ts == 0 {
		ts = now.UnixMilli()
	}
	if ts < coll.DayStart.UnixMilli() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf(
			"timestamp %s is before the start of the day (%s)",
			time.UnixMilli(ts).In(coll.DayStart.Location()).Format(time.RFC3339),
			coll.DayStart.Format(time.RFC3339)))
	}

	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	overall := capacity.Overall(input.Capacity)
	var previous *float64
	if p := predecessor(coll.CheckIns, ts); p != nil {
		previous = &p.OverallCapacity
	}

	entry := capacity.CheckIn{
		ID:              id,
		Timestamp:       ts,
		Capacity:        input.Capacity,
		Journal:         strings.TrimSpace(input.Journal),
		OverallCapacity: overall,
		Type:            capacity.Classify(overall, previous),
	}

	next := coll.clone()
	next.CheckIns = append(next.CheckIns, entry)
	sortCheckIns(next.CheckIns)
	s.metrics.ObserveCheckIn(string(entry.Type))

	persisted := s.save(ctx, next) == nil

	return &AddOutput{
		CheckIn:    entry,
		Collection: next,
		Persisted:  persisted,
	}, nil
}

// predecessor returns the check-in with the greatest timestamp strictly less
// than ts. checkIns must be sorted ascending.
func predecessor(checkIns []capacity.CheckIn, ts int64) *capacity.CheckIn {
	for i := len(checkIns) - 1; i >= 0; i-- {
		if checkIns[i].Timestamp < ts {
			return &checkIns[i]
		}
	}
	return nil
}
