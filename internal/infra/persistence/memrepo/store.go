// Package memrepo is an in-process implementation of the task, task detail
// and node repositories. All three share one mutex-guarded state, so a Store
// behaves like a single database shared by every scheduler built on it.
package memrepo

import (
	"sync"
	"time"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	tasks   map[uint64]*task.Task
	details map[uint64]*taskdetail.TaskDetail
	nodes   map[string]*node.Node
	nextID  uint64
}

type Option func(*Store)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		tasks:   make(map[uint64]*task.Task),
		details: make(map[uint64]*taskdetail.TaskDetail),
		nodes:   make(map[string]*node.Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Tasks() task.Repo         { return &taskRepo{s} }
func (s *Store) Details() taskdetail.Repo { return &detailRepo{s} }
func (s *Store) Nodes() node.Repo         { return &nodeRepo{s} }

// Touch rewrites a task's updated_at. Tests use it to age records.
func (s *Store) Touch(taskID uint64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		t.UpdatedAt = at
	}
}

func (s *Store) allocID() uint64 {
	s.nextID++
	return s.nextID
}
