package main

import (
	"context"
	"errors"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/api"
	"github.com/jobs/dcron/internal/orm"
	"github.com/jobs/dcron/internal/scheduler"
)

// App 一个调度节点进程持有的全部组件
type App struct {
	logger    *zap.Logger
	Scheduler *scheduler.Scheduler
	Server    *api.Server
	bus       *scheduler.NotifyBus
	storage   *orm.Storage
	rdb       *redis.Client
}

func NewApp(
	logger *zap.Logger,
	sched *scheduler.Scheduler,
	server *api.Server,
	bus *scheduler.NotifyBus,
	storage *orm.Storage,
	rdb *redis.Client,
) *App {
	return &App{
		logger:    logger,
		Scheduler: sched,
		Server:    server,
		bus:       bus,
		storage:   storage,
		rdb:       rdb,
	}
}

func (a *App) Start(ctx context.Context) error {
	return a.Scheduler.Start(ctx)
}

// Stop 先停调度器, 再释放连接
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if err := a.Scheduler.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.bus.Close()
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.storage.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
