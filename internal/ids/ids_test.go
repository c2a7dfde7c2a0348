package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsUniqueAndIncreasing(t *testing.T) {
	seen := make(map[uint64]struct{})
	var prev uint64
	for i := 0; i < 1000; i++ {
		id := Next()
		_, dup := seen[id]
		assert.False(t, dup)
		assert.Greater(t, id, prev)
		seen[id] = struct{}{}
		prev = id
	}
}

func TestGeneratorsWithDifferentWorkerIDsNeverCollide(t *testing.T) {
	a := NewGenerator(WorkerIDFor("node-a"))
	b := NewGenerator(WorkerIDFor("node-b"))
	require.NotEqual(t, a.WorkerID(), b.WorkerID())

	seen := make(map[uint64]struct{})
	for i := 0; i < 1000; i++ {
		for _, id := range []uint64{a.Next(), b.Next()} {
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %d", id)
			seen[id] = struct{}{}
		}
	}
}

func TestWorkerIDForIsStableAndInRange(t *testing.T) {
	for _, nodeID := range []string{"", "node-a", "worker-01-10.0.0.12", "a-very-long-host-name.example.internal-192.168.100.200"} {
		id := WorkerIDFor(nodeID)
		assert.LessOrEqual(t, int(id), MaxWorkerID)
		assert.Equal(t, id, WorkerIDFor(nodeID))
	}
}
