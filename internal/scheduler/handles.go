package scheduler

import (
	"context"
	"sync"
)

type runHandle struct {
	cancel  context.CancelFunc
	stopped bool
}

// handles 在途任务的取消句柄, key 为任务 ID
type handles struct {
	mu sync.Mutex
	m  map[uint64]*runHandle
}

func newHandles() *handles {
	return &handles{m: make(map[uint64]*runHandle)}
}

func (h *handles) add(taskID uint64, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.m[taskID] = &runHandle{cancel: cancel}
}

// stop cancels the in-flight run and marks it as stopped by request.
// It reports whether a run was found.
func (h *handles) stop(taskID uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	rh, ok := h.m[taskID]
	if !ok {
		return false
	}
	rh.stopped = true
	rh.cancel()
	return true
}

// finish removes the handle and reports whether the run was stopped by
// request. After finish a later stop for the same id finds nothing.
func (h *handles) finish(taskID uint64) (stopped bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rh, ok := h.m[taskID]
	if !ok {
		return false
	}
	delete(h.m, taskID)
	rh.cancel()
	return rh.stopped
}

func (h *handles) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.m)
}
