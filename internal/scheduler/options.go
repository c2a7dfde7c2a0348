package scheduler

import (
	"time"

	"github.com/samber/mo"

	"github.com/jobs/dcron/internal/ids"
	"github.com/jobs/dcron/pkg/config"
)

// JobSpec 节点启动时注册的任务
type JobSpec struct {
	Name string
	Cron string
	Key  string
}

type Options struct {
	NodeID string
	Weight int
	// WorkerID 雪花ID的 WorkerId, 为空时由 NodeID 推导
	WorkerID mo.Option[uint16]

	FetchPeriod   time.Duration
	FetchDuration time.Duration

	Pool PoolOptions

	HeartbeatEnabled  bool
	HeartbeatInterval time.Duration
	RecoverEnabled    bool
	RecoverInterval   time.Duration

	Jobs []JobSpec

	// Clock 为空时使用 time.Now
	Clock func() time.Time
}

func NewOptions(cfg *config.Config) Options {
	jobs := make([]JobSpec, 0, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		jobs = append(jobs, JobSpec{Name: j.Name, Cron: j.Cron, Key: j.Key})
	}
	return Options{
		NodeID:        cfg.Node.ID,
		Weight:        cfg.Node.Weight,
		WorkerID:      workerIDOption(cfg.Node.WorkerID),
		FetchPeriod:   cfg.Fetch.Period,
		FetchDuration: cfg.Fetch.Duration,
		Pool: PoolOptions{
			CoreSize:      cfg.Pool.CoreSize,
			MaxSize:       cfg.Pool.MaxSize,
			QueueCapacity: cfg.Pool.QueueCapacity,
			KeepAlive:     cfg.Pool.KeepAlive,
		},
		HeartbeatEnabled:  cfg.Heartbeat.Enabled,
		HeartbeatInterval: cfg.Heartbeat.Interval,
		RecoverEnabled:    cfg.Recover.Enabled,
		RecoverInterval:   cfg.Recover.Interval,
		Jobs:              jobs,
	}
}

func workerIDOption(id int) mo.Option[uint16] {
	if id < 0 {
		return mo.None[uint16]()
	}
	return mo.Some(uint16(id))
}

func (o *Options) normalize() {
	if o.Weight <= 0 {
		o.Weight = 1
	}
	if o.WorkerID.IsAbsent() {
		o.WorkerID = mo.Some(ids.WorkerIDFor(o.NodeID))
	}
	if o.FetchPeriod <= 0 {
		o.FetchPeriod = 5 * time.Second
	}
	if o.FetchDuration <= 0 {
		o.FetchDuration = 30 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 10 * time.Second
	}
	if o.RecoverInterval <= 0 {
		o.RecoverInterval = 30 * time.Second
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	o.Pool.normalize()
}
