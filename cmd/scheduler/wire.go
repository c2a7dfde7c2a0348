//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/api"
	"github.com/jobs/dcron/internal/infra/persistence/noderepo"
	"github.com/jobs/dcron/internal/infra/persistence/taskdetailrepo"
	"github.com/jobs/dcron/internal/infra/persistence/taskrepo"
	"github.com/jobs/dcron/internal/loadbalance"
	"github.com/jobs/dcron/internal/orm"
	"github.com/jobs/dcron/internal/scheduler"
	"github.com/jobs/dcron/pkg/config"
)

func InitializeApp(logger *zap.Logger, cfg *config.Config) (*App, error) {
	wire.Build(
		NewApp,

		ProvideRedisClient,
		ProvideStrategy,
		ProvideOrmConfig,
		ProvideRegistry,

		wire.Bind(new(api.Control), new(*scheduler.Scheduler)),
		wire.Bind(new(api.Pinger), new(*orm.Storage)),

		// other
		scheduler.Provider,
		loadbalance.Provider,
		orm.Provider,

		// http api providers
		api.Provider,

		// infra providers
		taskrepo.Provider,
		taskdetailrepo.Provider,
		noderepo.Provider,
	)
	return nil, nil
}
