package main

import (
	"fmt"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/loadbalance"
	"github.com/jobs/dcron/internal/orm"
	"github.com/jobs/dcron/internal/scheduler"
	"github.com/jobs/dcron/pkg/config"
)

// ProvideRedisClient builds a redis client from typed config.
// Returns nil when redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideStrategy 按配置选择抢占策略
func ProvideStrategy(manager *loadbalance.Manager, cfg *config.Config) (loadbalance.Strategy, error) {
	return manager.Get(cfg.Node.Strategy)
}

func ProvideOrmConfig(cfg *config.Config) orm.Config {
	return orm.Config{
		Host:                  cfg.Database.Host,
		Port:                  cfg.Database.Port,
		Database:              cfg.Database.Database,
		User:                  cfg.Database.User,
		Password:              cfg.Database.Password,
		MaxConnections:        cfg.Database.MaxConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
		AutoMigrate:           cfg.Database.AutoMigrate,
	}
}

// ProvideRegistry 注册本进程可执行的 job
func ProvideRegistry(logger *zap.Logger) *scheduler.Registry {
	registry := scheduler.NewRegistry()
	registerBuiltinJobs(registry, logger)
	return registry
}
