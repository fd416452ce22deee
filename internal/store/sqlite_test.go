package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "deliveries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordDelivery_AssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d := &DeliveryRecord{
		Channel:  "feishu",
		Schema:   "rich_card",
		TaskName: "deploy service",
		Status:   "success",
		TaskType: "Bash",
		OK:       true,
		Attempts: 1,
	}
	require.NoError(t, s.RecordDelivery(d))

	assert.NotZero(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestListDeliveries_NewestFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.RecordDelivery(&DeliveryRecord{
			Channel:   "feishu",
			Schema:    "plain_text",
			TaskName:  name,
			Status:    "success",
			TaskType:  "Custom",
			OK:        true,
			Attempts:  1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.ListDeliveries(DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].TaskName)
	assert.Equal(t, "first", got[2].TaskName)
}

func TestListDeliveries_Filters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.RecordDelivery(&DeliveryRecord{
		Channel: "feishu", Schema: "rich_card", TaskName: "a", Status: "failed",
		TaskType: "Bash", OK: false, Failure: "channel", Diagnostic: "HTTP 500",
		FellBack: true, Attempts: 2,
	}))
	require.NoError(t, s.RecordDelivery(&DeliveryRecord{
		Channel: "pusher", Schema: "generic_push", TaskName: "b", Status: "success",
		TaskType: "Write", OK: true, Attempts: 1,
	}))

	byChannel, err := s.ListDeliveries(DeliveryFilter{Channel: "pusher"})
	require.NoError(t, err)
	require.Len(t, byChannel, 1)
	assert.Equal(t, "b", byChannel[0].TaskName)

	failed := false
	byOutcome, err := s.ListDeliveries(DeliveryFilter{OK: &failed})
	require.NoError(t, err)
	require.Len(t, byOutcome, 1)
	assert.Equal(t, "a", byOutcome[0].TaskName)
	assert.True(t, byOutcome[0].FellBack)
	assert.Equal(t, 2, byOutcome[0].Attempts)
}

func TestListDeliveries_Limit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for range 5 {
		require.NoError(t, s.RecordDelivery(&DeliveryRecord{
			Channel: "c", Schema: "plain_text", TaskName: "x", Status: "success",
			TaskType: "Custom", OK: true, Attempts: 1,
		}))
	}

	got, err := s.ListDeliveries(DeliveryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCleanup_RemovesOldDeliveries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.RecordDelivery(&DeliveryRecord{
		Channel: "c", Schema: "plain_text", TaskName: "old", Status: "success",
		TaskType: "Custom", OK: true, Attempts: 1, CreatedAt: old,
	}))
	require.NoError(t, s.RecordDelivery(&DeliveryRecord{
		Channel: "c", Schema: "plain_text", TaskName: "new", Status: "success",
		TaskType: "Custom", OK: true, Attempts: 1,
	}))

	require.NoError(t, s.Cleanup(time.Now().Add(-24*time.Hour)))

	got, err := s.ListDeliveries(DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].TaskName)
}
