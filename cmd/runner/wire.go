//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"context"

	"github.com/google/wire"
	"github.com/validators/runner/internal/api"
	"github.com/validators/runner/internal/infra/persistence/executionrepo"
	"github.com/validators/runner/internal/infra/persistence/scanresultrepo"
	"github.com/validators/runner/internal/infra/persistence/scriptrepo"
	"github.com/validators/runner/internal/orm"
	"github.com/validators/runner/internal/queue"
	"github.com/validators/runner/internal/reconcile"
	"github.com/validators/runner/internal/runner"
	"github.com/validators/runner/internal/service"
	"github.com/validators/runner/pkg/config"
	"go.uber.org/zap"
)

func InitializeApp(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*App, error) {
	wire.Build(
		NewApp,

		ProvideORMConfig,
		ProvideRedisConfig,
		ProvideQueueConfig,
		ProvideDB,

		// storage
		orm.Provider,

		// queue providers
		queue.ClientProvider,
		queue.ServerProvider,
		queue.HandlerProvider,

		// worker providers
		runner.Provider,

		// reconcile providers
		reconcile.Provider,

		// service providers
		service.Provider,

		// http api providers
		api.Provider,

		// infra providers
		scriptrepo.Provider,
		executionrepo.Provider,
		scanresultrepo.Provider,
	)
	return nil, nil
}
