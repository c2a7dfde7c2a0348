package scheduler

import "errors"

var (
	// ErrVersionConflict is returned when a conditional update keeps losing
	// to concurrent writers after the bounded number of attempts.
	ErrVersionConflict = errors.New("version conflict")
	// ErrNotifyBusy means the target node still has an unprocessed notify.
	ErrNotifyBusy = errors.New("node notify slot is busy")
	// ErrJobNotRegistered means no job body is registered under the key.
	ErrJobNotRegistered = errors.New("job not registered")
	ErrPoolClosed       = errors.New("worker pool closed")
	ErrAlreadyStarted   = errors.New("scheduler already started")
	// ErrWorkerIDConflict means another live node generates ids with the
	// same worker id.
	ErrWorkerIDConflict = errors.New("worker id conflict")

	// errSkipUpdate aborts an optimistic update without writing.
	errSkipUpdate = errors.New("skip update")
)
