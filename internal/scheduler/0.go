package scheduler

import "github.com/google/wire"

// Provider job 注册表由调用方提供
var Provider = wire.NewSet(
	New,
	NewNotifyBus,
	NewOptions,
)
