package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskwave/internal/apperror"
	"riskwave/internal/event"
)

func tick(ts int64) event.Event {
	return event.New(event.MidMarketPrice, ts, event.Payload{"ts": ts})
}

func TestFixedEvictsOlderThanSpan(t *testing.T) {
	f := NewFixed(100)

	f.Push(tick(0))
	f.Push(tick(50))
	f.Push(tick(120))

	require.Equal(t, 2, f.Len(), "the event at ts=0 is now older than the 100ns span")
	oldest, err := f.Oldest("test")
	require.NoError(t, err)
	assert.Equal(t, int64(50), oldest.TimestampNs)
}

func TestFixedOldestAndNewestEmptyQueue(t *testing.T) {
	f := NewFixed(100)

	_, err := f.Oldest("test")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.EmptyQueue))

	_, err = f.Newest("test")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.EmptyQueue))
}

func TestFixedNewestIsLastPushed(t *testing.T) {
	f := NewFixed(1000)
	f.Push(tick(0))
	f.Push(tick(10))

	newest, err := f.Newest("test")
	require.NoError(t, err)
	assert.Equal(t, int64(10), newest.TimestampNs)
}

func TestSlidingEmitsNoSnapshotOnFirstPush(t *testing.T) {
	s := NewSliding(1000, 100)
	snaps := s.Push(tick(0))
	assert.Empty(t, snaps)
}

func TestSlidingEmitsSnapshotOnBoundaryCrossing(t *testing.T) {
	s := NewSliding(1000, 100)
	s.Push(tick(0))

	snaps := s.Push(tick(150))
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(100), snaps[0].AtTimestampNs)
	assert.Len(t, snaps[0].Items, 2)
}

func TestSlidingEmitsMultipleSnapshotsAcrossGap(t *testing.T) {
	s := NewSliding(1000, 100)
	s.Push(tick(0))

	snaps := s.Push(tick(350))
	require.Len(t, snaps, 3, "crosses the 100, 200, and 300 boundaries")
	assert.Equal(t, int64(100), snaps[0].AtTimestampNs)
	assert.Equal(t, int64(200), snaps[1].AtTimestampNs)
	assert.Equal(t, int64(300), snaps[2].AtTimestampNs)
}

func TestSlidingUnderlyingSpanStillEvicts(t *testing.T) {
	s := NewSliding(100, 50)
	s.Push(tick(0))
	s.Push(tick(200))

	assert.Equal(t, 1, s.Len(), "ts=0 fell outside the 100ns span once ts=200 was pushed")
}
