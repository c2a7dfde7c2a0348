package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/scheduler"
)

const (
	jobLog   = "log"
	jobSleep = "sleep"
)

func registerBuiltinJobs(registry *scheduler.Registry, logger *zap.Logger) {
	registry.Register(jobLog, func(ctx context.Context) error {
		logger.Info("log job fired", zap.Time("at", time.Now()))
		return nil
	})
	// 用于观察停止请求
	registry.Register(jobSleep, func(ctx context.Context) error {
		select {
		case <-time.After(30 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
