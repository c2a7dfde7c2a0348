package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskTransitions(t *testing.T) {
	fire := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	next := fire.Add(time.Minute)
	tk := &Task{ID: 1, Status: TaskStatusNotStarted, NextStartTime: &fire}

	tk.Claim("node-a")
	assert.Equal(t, TaskStatusPending, tk.Status)
	assert.True(t, tk.IsOwnedBy("node-a"))

	tk.Start()
	assert.Equal(t, TaskStatusDoing, tk.Status)

	tk.Succeed(&next)
	assert.Equal(t, TaskStatusNotStarted, tk.Status)
	assert.Equal(t, int64(1), tk.SuccessCount)
	assert.Equal(t, next, *tk.NextStartTime)
	assert.Empty(t, tk.NodeID)
}

func TestFailKeepsNextStartTime(t *testing.T) {
	fire := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := &Task{Status: TaskStatusDoing, NodeID: "n", NextStartTime: &fire}

	tk.Fail()
	assert.Equal(t, TaskStatusError, tk.Status)
	assert.Equal(t, int64(1), tk.FailCount)
	assert.Equal(t, fire, *tk.NextStartTime)
}

func TestSucceedWithoutNextFinishes(t *testing.T) {
	fire := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := &Task{Status: TaskStatusDoing, NextStartTime: &fire}

	tk.Succeed(nil)
	assert.Equal(t, TaskStatusFinish, tk.Status)
	assert.Nil(t, tk.NextStartTime)
}

func TestCloneIsDeep(t *testing.T) {
	fire := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := &Task{NextStartTime: &fire}
	c := tk.Clone()
	*c.NextStartTime = fire.Add(time.Hour)
	assert.Equal(t, fire, *tk.NextStartTime)
}
