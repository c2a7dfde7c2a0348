package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
)

func TestNotifyBusDeliversInProcess(t *testing.T) {
	bus := NewNotifyBus(nil, zap.NewNop())
	nudgeA, unsubscribeA := bus.Subscribe("node-a")
	nudgeB, unsubscribeB := bus.Subscribe("node-b")
	defer unsubscribeB()

	require.NoError(t, bus.Publish(context.Background(), NotifyEvent{NodeID: "node-a", Cmd: node.NotifyStop, TaskID: 7}))

	select {
	case <-nudgeA:
	case <-time.After(time.Second):
		t.Fatal("node-a was not nudged")
	}
	select {
	case <-nudgeB:
		t.Fatal("node-b must not be nudged")
	default:
	}

	unsubscribeA()
	require.NoError(t, bus.Publish(context.Background(), NotifyEvent{NodeID: "node-a"}))
	select {
	case <-nudgeA:
		t.Fatal("unsubscribed channel was nudged")
	default:
	}
	bus.Close()
}

func TestNotifyBusCoalescesNudges(t *testing.T) {
	bus := NewNotifyBus(nil, zap.NewNop())
	nudge, unsubscribe := bus.Subscribe("node-a")
	defer unsubscribe()

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), NotifyEvent{NodeID: "node-a"}))
	}
	assert.Len(t, nudge, 1)
}
