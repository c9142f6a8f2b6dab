package ops

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/logger"
	"github.com/hpungsan/captrack/internal/metrics"
)

// Store loads and saves per-user check-in collections.
// Writes are serialized; concurrent processes are last-writer-wins.
type Store struct {
	kv      KV
	clock   Clock
	logger  *log.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics sets the store's metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a Store over kv.
func NewStore(kv KV, clock Clock, opts ...Option) *Store {
	s := &Store{kv: kv, clock: clock}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrDiscard(s.logger)
	return s
}

// Clock returns the store's clock.
func (s *Store) Clock() Clock {
	return s.clock
}

// Collection is one user's check-ins for the current day, sorted ascending
// by timestamp. Entries from earlier days are carried along so that saving
// the collection never drops them from storage.
type Collection struct {
	UserID   string             `json:"user_id"`
	DayStart time.Time          `json:"day_start"`
	CheckIns []capacity.CheckIn `json:"check_ins"`

	history []capacity.CheckIn
	// unreadable is set when storage could not be read; history is unknown,
	// so saving would overwrite it.
	unreadable bool
}

// Latest returns the chronologically last check-in, or nil.
func (c *Collection) Latest() *capacity.CheckIn {
	if c == nil || len(c.CheckIns) == 0 {
		return nil
	}
	latest := c.CheckIns[len(c.CheckIns)-1]
	return &latest
}

// HistoryLen returns how many persisted entries fall before DayStart.
func (c *Collection) HistoryLen() int {
	return len(c.history)
}

// clone returns a copy whose slices can be modified independently.
func (c *Collection) clone() *Collection {
	out := &Collection{
		UserID:   c.UserID,
		DayStart: c.DayStart,
		CheckIns: make([]capacity.CheckIn, len(c.CheckIns)),
		history:  make([]capacity.CheckIn, len(c.history)),

		unreadable: c.unreadable,
	}
	copy(out.CheckIns, c.CheckIns)
	copy(out.history, c.history)
	return out
}

// all returns history followed by today's check-ins, sorted ascending.
func (c *Collection) all() []capacity.CheckIn {
	out := make([]capacity.CheckIn, 0, len(c.history)+len(c.CheckIns))
	out = append(out, c.history...)
	out = append(out, c.CheckIns...)
	sortCheckIns(out)
	return out
}

// newCollection splits records at dayStart.
func newCollection(userID string, dayStart time.Time, records []capacity.CheckIn) *Collection {
	c := &Collection{
		UserID:   userID,
		DayStart: dayStart,
		CheckIns: []capacity.CheckIn{},
	}
	cutoff := dayStart.UnixMilli()
	for _, r := range records {
		if r.Timestamp >= cutoff {
			c.CheckIns = append(c.CheckIns, r)
		} else {
			c.history = append(c.history, r)
		}
	}
	sortCheckIns(c.CheckIns)
	sortCheckIns(c.history)
	return c
}

// sortCheckIns sorts ascending by timestamp, keeping insertion order on ties.
func sortCheckIns(checkIns []capacity.CheckIn) {
	sort.SliceStable(checkIns, func(i, j int) bool {
		return checkIns[i].Timestamp < checkIns[j].Timestamp
	})
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID generates a new ULID. The entropy source is shared so IDs
// minted within the same millisecond stay unique and ordered.
func generateULID(t time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
