package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/captrack/internal/errors"
)

func intPtr(i int) *int {
	return &i
}

func TestPrune_DefaultKeepsRecent(t *testing.T) {
	s, kv := newTestStore(t)
	seedHistory(t, s, kv)

	out, err := s.Prune(context.Background(), PruneInput{UserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pruned)
	assert.Equal(t, 2, out.Remaining)
	assert.Contains(t, out.Message, "Permanently deleted 1 check-in ")

	all, _, err := s.readAll(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01MID", all[0].ID)
}

func TestPrune_ZeroDaysKeepsToday(t *testing.T) {
	s, kv := newTestStore(t)
	seedHistory(t, s, kv)

	out, err := s.Prune(context.Background(), PruneInput{UserID: testUser, OlderThanDays: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pruned)
	assert.Equal(t, 1, out.Remaining)

	coll, ok := s.Load(context.Background(), testUser)
	require.True(t, ok)
	assert.Len(t, coll.CheckIns, 1)
	assert.Zero(t, coll.HistoryLen())
}

func TestPrune_NothingStored(t *testing.T) {
	s, kv := newTestStore(t)

	out, err := s.Prune(context.Background(), PruneInput{UserID: testUser})
	require.NoError(t, err)
	assert.Zero(t, out.Pruned)
	assert.Equal(t, "No check-ins to prune", out.Message)
	assert.Zero(t, kv.setCnt)
}

func TestPrune_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Prune(context.Background(), PruneInput{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.Prune(context.Background(), PruneInput{UserID: testUser, OlderThanDays: intPtr(-1)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestFormatPruneMessage(t *testing.T) {
	assert.Equal(t, "No check-ins to prune", formatPruneMessage(0, 30))
	assert.Equal(t, "Permanently deleted 2 check-ins (recorded more than 30 days before today)", formatPruneMessage(2, 30))
}

func TestPrune_ReadFailure(t *testing.T) {
	s, kv := newTestStore(t)
	seedHistory(t, s, kv)
	kv.getErr = assert.AnError
	kv.setCnt = 0

	_, err := s.Prune(context.Background(), PruneInput{UserID: testUser})
	assert.True(t, errors.Is(err, errors.ErrInternal))
	assert.Zero(t, kv.setCnt)
}
