package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

// PruneInput contains parameters for the Prune operation.
type PruneInput struct {
	UserID        string
	OlderThanDays *int // default: DefaultPruneAfterDays
}

// PruneOutput contains the result of the Prune operation.
type PruneOutput struct {
	Pruned    int    `json:"pruned"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// Prune permanently deletes the user's check-ins recorded more than
// OlderThanDays days before today. Today's check-ins are never pruned.
func (s *Store) Prune(ctx context.Context, input PruneInput) (*PruneOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	days := DefaultPruneAfterDays
	if input.OlderThanDays != nil {
		days = *input.OlderThanDays
	}
	if days < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	cutoff := s.clock.Today().AddDate(0, 0, -days).UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, found, err := s.readAll(ctx, input.UserID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !found {
		return &PruneOutput{Message: formatPruneMessage(0, days)}, nil
	}

	kept := make([]capacity.CheckIn, 0, len(records))
	for _, r := range records {
		if r.Timestamp >= cutoff {
			kept = append(kept, r)
		}
	}
	pruned := len(records) - len(kept)
	if pruned > 0 {
		if err := s.persist(ctx, input.UserID, kept); err != nil {
			s.metrics.ObservePersistFailure()
			return nil, err
		}
	}

	return &PruneOutput{
		Pruned:    pruned,
		Remaining: len(kept),
		Message:   formatPruneMessage(pruned, days),
	}, nil
}

func formatPruneMessage(count, days int) string {
	if count == 0 {
		return "No check-ins to prune"
	}
	word := "check-in"
	if count > 1 {
		word = "check-ins"
	}
	return fmt.Sprintf("Permanently deleted %d %s (recorded more than %d days before today)", count, word, days)
}
