package task

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidCron  = errors.New("invalid cron expression")
	ErrTaskRunning  = errors.New("task is running")
	ErrInvalidName  = errors.New("task name is required")
)
