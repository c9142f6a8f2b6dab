package ops

import (
	"context"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
	"github.com/hpungsan/captrack/internal/timeline"
)

// DashboardOutput is everything the dashboard renders for one user and day.
type DashboardOutput struct {
	UserID   string             `json:"user_id"`
	Day      string             `json:"day"`
	Log      []capacity.CheckIn `json:"log"`
	Timeline []timeline.Point   `json:"timeline"`
	Summary  capacity.Summary   `json:"summary"`
	Defaults FormDefaults       `json:"defaults"`
}

// Dashboard loads userID's collection and builds the dashboard view.
func (s *Store) Dashboard(ctx context.Context, userID string) (*DashboardOutput, error) {
	if userID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	coll, _ := s.Load(ctx, userID)
	return s.View(coll), nil
}

// View builds the dashboard for an already loaded collection.
func (s *Store) View(coll *Collection) *DashboardOutput {
	day := coll.DayStart
	return &DashboardOutput{
		UserID:   coll.UserID,
		Day:      day.Format("2006-01-02"),
		Log:      LogEntries(coll),
		Timeline: timeline.Reconcile(day, coll.CheckIns),
		Summary: capacity.Summarize(coll.CheckIns, func(ts int64) float64 {
			return timeline.ExpectedAt(day, ts)
		}),
		Defaults: SuggestDefaults(coll, s.clock.Current()),
	}
}

// Timeline returns the reconciled series for userID's day.
func (s *Store) Timeline(ctx context.Context, userID string) ([]timeline.Point, error) {
	if userID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	coll, _ := s.Load(ctx, userID)
	return timeline.Reconcile(coll.DayStart, coll.CheckIns), nil
}

// Log returns userID's check-ins for today, newest first.
func (s *Store) Log(ctx context.Context, userID string) ([]capacity.CheckIn, error) {
	if userID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	coll, _ := s.Load(ctx, userID)
	return LogEntries(coll), nil
}

// LogEntries returns the collection's check-ins in reverse chronological order.
func LogEntries(coll *Collection) []capacity.CheckIn {
	out := make([]capacity.CheckIn, len(coll.CheckIns))
	for i, c := range coll.CheckIns {
		out[len(out)-1-i] = c
	}
	return out
}

// Summary aggregates userID's check-ins for today.
func (s *Store) Summary(ctx context.Context, userID string) (capacity.Summary, error) {
	if userID == "" {
		return capacity.Summary{}, errors.NewInvalidRequest("user is required")
	}
	coll, _ := s.Load(ctx, userID)
	return s.View(coll).Summary, nil
}
