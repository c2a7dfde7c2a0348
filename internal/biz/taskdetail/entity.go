package taskdetail

import (
	"errors"
	"time"
)

var ErrDetailClosed = errors.New("task detail already closed")

// TaskDetail 任务的一次执行记录
type TaskDetail struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	TaskID       uint64
	NodeID       string
	FireTime     time.Time // 本次执行对应的触发时间
	RetryCount   int       // 同一触发时间之前已有的执行次数
	Status       DetailStatus
	StartTime    time.Time
	EndTime      *time.Time
	ErrorMessage string
	Version      int64
}

func (d *TaskDetail) Closed() bool {
	return d.Status != DetailStatusDoing
}

// Finish closes the detail as FINISH.
func (d *TaskDetail) Finish(at time.Time) error {
	return d.close(DetailStatusFinish, at, "")
}

// Fail closes the detail as ERROR with the given message.
func (d *TaskDetail) Fail(at time.Time, message string) error {
	if message == "" {
		message = "unknown error"
	}
	return d.close(DetailStatusError, at, message)
}

func (d *TaskDetail) close(status DetailStatus, at time.Time, message string) error {
	if d.Closed() {
		return ErrDetailClosed
	}
	d.Status = status
	d.EndTime = &at
	d.ErrorMessage = message
	return nil
}
