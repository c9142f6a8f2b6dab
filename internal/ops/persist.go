package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

// persist writes records as userID's full durable list.
func (s *Store) persist(ctx context.Context, userID string, records []capacity.CheckIn) error {
	if records == nil {
		records = []capacity.CheckIn{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return errors.NewInternal(err)
	}
	return s.kv.Set(ctx, DataKey(userID), string(data))
}

// save writes the collection, history included. A failed write is logged
// and counted; the caller decides whether it is fatal.
func (s *Store) save(ctx context.Context, coll *Collection) error {
	if coll.unreadable {
		s.logger.Warn("not saving check-ins read from failed storage", "user", coll.UserID)
		s.metrics.ObservePersistFailure()
		return errors.NewInternal(fmt.Errorf("stored check-ins for %s could not be read", coll.UserID))
	}
	if err := s.persist(ctx, coll.UserID, coll.all()); err != nil {
		s.logger.Error("failed to persist check-ins", "user", coll.UserID, "err", err)
		s.metrics.ObservePersistFailure()
		return err
	}
	return nil
}
