package task

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOT_STARTED"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusDoing      TaskStatus = "DOING"
	TaskStatusError      TaskStatus = "ERROR"
	TaskStatusStop       TaskStatus = "STOP"
	TaskStatusFinish     TaskStatus = "FINISH"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusPending, TaskStatusDoing,
		TaskStatusError, TaskStatusStop, TaskStatusFinish:
		return true
	}
	return false
}
