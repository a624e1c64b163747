package main

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/validators/runner/internal/api"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"github.com/validators/runner/internal/orm"
	"github.com/validators/runner/internal/queue"
	"github.com/validators/runner/internal/reconcile"
	"github.com/validators/runner/pkg/config"
)

// App 进程内所有长生命周期组件的聚合，main 负责启停顺序
type App struct {
	Config     *config.Config
	Storage    *orm.Storage
	Redis      *redis.Client
	Worker     *asynq.Server
	Mux        *asynq.ServeMux
	API        *api.Server
	Reconciler *reconcile.Reconciler
}

func NewApp(
	cfg *config.Config,
	storage *orm.Storage,
	rdb *redis.Client,
	worker *asynq.Server,
	mux *asynq.ServeMux,
	handler *queue.ScriptTaskHandler,
	apiServer *api.Server,
	reconciler *reconcile.Reconciler,
) *App {
	handler.Register(mux)
	return &App{
		Config:     cfg,
		Storage:    storage,
		Redis:      rdb,
		Worker:     worker,
		Mux:        mux,
		API:        apiServer,
		Reconciler: reconciler,
	}
}

// ProvideORMConfig builds storage options from typed config.
func ProvideORMConfig(cfg *config.Config) orm.Config {
	return orm.Config{
		Host:                  cfg.Database.Host,
		Port:                  cfg.Database.Port,
		Database:              cfg.Database.Database,
		User:                  cfg.Database.User,
		Password:              cfg.Database.Password,
		MaxConnections:        cfg.Database.MaxConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	}
}

func ProvideRedisConfig(cfg *config.Config) config.RedisConfig {
	return cfg.Redis
}

func ProvideQueueConfig(cfg *config.Config) config.QueueConfig {
	return cfg.Queue
}

func ProvideDB(storage *orm.Storage) commonrepo.DB {
	return storage.DB()
}
