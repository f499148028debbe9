package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageflow/stageflow/pkg/channels/gochannel"
	"github.com/stageflow/stageflow/pkg/eventbus"
	"github.com/stageflow/stageflow/pkg/events"
	"github.com/stageflow/stageflow/pkg/models"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		received []*events.ActionTriggered
	)

	err := bus.Handle(events.ActionTriggeredEvent, func(_ context.Context, event any) error {
		triggered, ok := event.(*events.ActionTriggered)
		require.True(t, ok)

		mu.Lock()
		received = append(received, triggered)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	event := events.ActionTriggered{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.ActionTriggeredEvent,
			Timestamp: time.Now().UTC(),
			ActionID:  7,
		},
		ActionType:  models.ActionTypeSystem,
		TriggerData: map[string]any{"OnboardingId": 42.0, "StageId": 5.0},
	}

	require.NoError(t, bus.Publish(ctx, "onboarding-42", event))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, int64(7), received[0].ActionID)
	assert.Equal(t, models.ActionTypeSystem, received[0].ActionType)
	assert.Equal(t, 42.0, received[0].TriggerData["OnboardingId"])
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		count int
	)

	err := bus.Handle(events.StageCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.StageCompleted)
		require.True(t, ok)
		assert.Equal(t, int64(42), completed.OnboardingID)

		mu.Lock()
		count++
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	started := events.ActionExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:   bus.GenerateID(),
			Type: events.ActionExecutionStartedEvent,
		},
		ExecutionID: "exec-1",
	}
	require.NoError(t, bus.Publish(ctx, "exec-1", started))

	completed := events.StageCompleted{
		BaseEvent: events.BaseEvent{
			ID:   bus.GenerateID(),
			Type: events.StageCompletedEvent,
		},
		OnboardingID: 42,
		StageID:      5,
	}
	require.NoError(t, bus.Publish(ctx, "onboarding-42", completed))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return count == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
