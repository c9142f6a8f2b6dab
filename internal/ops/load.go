package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/captrack/internal/capacity"
)

// Load returns userID's check-ins for today. ok is false when nothing usable
// was stored: a missing key or malformed data yields an empty collection
// rather than an error. When storage cannot be read at all the collection is
// also empty, but it is marked unreadable and is never written back.
func (s *Store) Load(ctx context.Context, userID string) (*Collection, bool) {
	records, ok, err := s.readAll(ctx, userID)
	coll := newCollection(userID, s.clock.Today(), records)
	coll.unreadable = err != nil
	return coll, ok
}

// readAll returns every persisted check-in for userID, across all days.
// found is false for a missing key and for malformed data; err is set only
// when the storage read itself failed.
func (s *Store) readAll(ctx context.Context, userID string) (records []capacity.CheckIn, found bool, err error) {
	raw, found, err := s.kv.Get(ctx, DataKey(userID))
	if err != nil {
		s.logger.Error("failed to read check-ins", "user", userID, "err", err)
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	records, err = decodeCheckIns(raw)
	if err != nil {
		s.logger.Warn("discarding malformed check-in data", "user", userID, "err", err)
		s.metrics.ObserveMalformedLoad()
		return nil, false, nil
	}
	return records, true, nil
}

// decodeCheckIns parses the durable JSON array and checks every record
// against the check-in schema.
func decodeCheckIns(raw string) ([]capacity.CheckIn, error) {
	var records []capacity.CheckIn
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	for i, r := range records {
		if err := capacity.ValidateRecord(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}
