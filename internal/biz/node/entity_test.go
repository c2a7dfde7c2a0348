package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLive(t *testing.T) {
	now := time.Now()
	n := &Node{Status: NodeStatusEnable, HeartbeatAt: now}

	assert.True(t, n.IsLive(now.Add(-time.Second)))
	assert.False(t, n.IsLive(now.Add(time.Second)))

	n.Status = NodeStatusDisable
	assert.False(t, n.IsLive(now.Add(-time.Second)))
}

func TestEffectiveWeight(t *testing.T) {
	assert.Equal(t, 1, (&Node{Weight: 0}).EffectiveWeight())
	assert.Equal(t, 1, (&Node{Weight: -3}).EffectiveWeight())
	assert.Equal(t, 5, (&Node{Weight: 5}).EffectiveWeight())
}
