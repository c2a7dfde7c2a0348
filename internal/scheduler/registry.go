package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// JobFunc 任务体, ctx 在收到停止请求或节点关闭时取消
type JobFunc func(ctx context.Context) error

// Registry 进程内 job 注册表, 任务的 ExecKey 指向这里的 key
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]JobFunc
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]JobFunc)}
}

// Register 注册 job, 同名 key 会被覆盖
func (r *Registry) Register(key string, fn JobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[key] = fn
}

func (r *Registry) Lookup(key string) (JobFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.jobs[key]
	return fn, ok
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := lo.Keys(r.jobs)
	sort.Strings(keys)
	return keys
}
