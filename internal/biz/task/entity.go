package task

import (
	"time"
)

// Task 周期任务定义及其运行时状态
type Task struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Name           string
	CronExpression string
	ExecKey        string // 进程内 job 注册表的 key

	Status         TaskStatus
	NodeID         string // 当前持有任务的节点
	SuccessCount   int64
	FailCount      int64
	FirstStartTime *time.Time
	NextStartTime  *time.Time
	Version        int64
}

// Clone returns a deep copy so callers can mutate it before a conditional
// update without touching the original.
func (t *Task) Clone() *Task {
	c := *t
	c.FirstStartTime = cloneTime(t.FirstStartTime)
	c.NextStartTime = cloneTime(t.NextStartTime)
	return &c
}

// Claim 节点抢占任务
func (t *Task) Claim(nodeID string) {
	t.Status = TaskStatusPending
	t.NodeID = nodeID
}

// Reschedule puts the task back in the claimable pool with a new fire time.
// A nil next finishes the task.
func (t *Task) Reschedule(next *time.Time) {
	t.NextStartTime = cloneTime(next)
	t.NodeID = ""
	if next == nil {
		t.Status = TaskStatusFinish
		return
	}
	t.Status = TaskStatusNotStarted
}

func (t *Task) Start() {
	t.Status = TaskStatusDoing
}

// Succeed records a successful run. next is computed from the previous
// NextStartTime, not from the wall clock.
func (t *Task) Succeed(next *time.Time) {
	t.SuccessCount++
	t.Reschedule(next)
}

// Fail records a failed run and keeps NextStartTime as it was.
func (t *Task) Fail() {
	t.FailCount++
	t.Status = TaskStatusError
}

func (t *Task) Stop() {
	t.Status = TaskStatusStop
	t.NodeID = ""
}

// Release clears the owner and makes the task claimable again without
// moving its fire time.
func (t *Task) Release() {
	t.Status = TaskStatusNotStarted
	t.NodeID = ""
}

func (t *Task) IsOwnedBy(nodeID string) bool {
	return t.NodeID != "" && t.NodeID == nodeID
}

func cloneTime(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
