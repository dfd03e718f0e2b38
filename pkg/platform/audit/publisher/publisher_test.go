package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/pkg/domain"
	audit "convoy/pkg/platform/audit"
	"convoy/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	driverID := domain.DriverID(uuid.New())
	event := audit.Event{
		DriverID: driverID,
		Action:   string(audit.EventRiskScoreComputed),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), driverID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRiskScoreComputed), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	driverID := domain.DriverID(uuid.New())
	event := audit.Event{
		DriverID: driverID,
		Action:   string(audit.EventCheckInTransitioned),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	// Close flushes the queue.
	pub.Close()

	events, err := store.ListByDriver(context.Background(), driverID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCheckInTransitioned), events[0].Action)
}

func TestPublisher_AsyncFullBufferFallsBackToSync(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	driverID := domain.DriverID(uuid.New())
	for i := 0; i < 20; i++ {
		err := pub.Emit(context.Background(), audit.Event{
			DriverID:  driverID,
			Action:    string(audit.EventRiskEventIngested),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByDriver(context.Background(), driverID)
	require.NoError(t, err)
	assert.Len(t, events, 20, "no events dropped when buffer is full")
}
