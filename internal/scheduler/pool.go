package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type PoolOptions struct {
	CoreSize      int
	MaxSize       int
	QueueCapacity int
	KeepAlive     time.Duration
}

func (o *PoolOptions) normalize() {
	if o.CoreSize <= 0 {
		o.CoreSize = 1
	}
	if o.MaxSize < o.CoreSize {
		o.MaxSize = o.CoreSize
	}
	if o.QueueCapacity < 0 {
		o.QueueCapacity = 0
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 60 * time.Second
	}
}

// Pool 有界工作池: 常驻 CoreSize 个 worker, 队列满时扩到 MaxSize,
// 都满时 Submit 阻塞. 超出 CoreSize 的 worker 空闲 KeepAlive 后退出.
type Pool struct {
	opts   PoolOptions
	logger *zap.Logger

	slots   *semaphore.Weighted
	queue   chan func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	workers atomic.Int32
}

func NewPool(opts PoolOptions, logger *zap.Logger) *Pool {
	opts.normalize()
	return &Pool{
		opts:   opts,
		logger: logger,
		slots:  semaphore.NewWeighted(int64(opts.MaxSize)),
		queue:  make(chan func(), opts.QueueCapacity),
		stopCh: make(chan struct{}),
	}
}

// Start 启动常驻 worker
func (p *Pool) Start() {
	for i := 0; i < p.opts.CoreSize; i++ {
		if !p.slots.TryAcquire(1) {
			break
		}
		p.spawn(nil, true)
	}
	p.logger.Info("worker pool started",
		zap.Int("core_size", p.opts.CoreSize),
		zap.Int("max_size", p.opts.MaxSize),
		zap.Int("queue_capacity", p.opts.QueueCapacity))
}

// Submit 提交任务, 池和队列都满时阻塞直到有空位或 ctx 结束
func (p *Pool) Submit(ctx context.Context, job func()) error {
	select {
	case <-p.stopCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.queue <- job:
		return nil
	default:
	}

	if p.slots.TryAcquire(1) {
		p.spawn(job, false)
		return nil
	}

	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return ErrPoolClosed
	}
}

// Stop 停止接收任务, 执行完队列中剩余的任务后返回
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.stopCh) })
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Size 当前 worker 数
func (p *Pool) Size() int {
	return int(p.workers.Load())
}

func (p *Pool) spawn(first func(), core bool) {
	p.wg.Add(1)
	p.workers.Add(1)
	go p.worker(first, core)
}

func (p *Pool) worker(first func(), core bool) {
	defer p.wg.Done()
	defer p.slots.Release(1)
	defer p.workers.Add(-1)

	if first != nil {
		p.run(first)
	}

	for {
		var timer *time.Timer
		var idle <-chan time.Time
		if !core {
			timer = time.NewTimer(p.opts.KeepAlive)
			idle = timer.C
		}

		select {
		case job := <-p.queue:
			if timer != nil {
				timer.Stop()
			}
			p.run(job)
		case <-idle:
			return
		case <-p.stopCh:
			if timer != nil {
				timer.Stop()
			}
			p.drain()
			return
		}
	}
}

func (p *Pool) drain() {
	for {
		select {
		case job := <-p.queue:
			p.run(job)
		default:
			return
		}
	}
}

func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic recovered", zap.Any("panic", r))
		}
	}()
	job()
}
