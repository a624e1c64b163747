package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	"github.com/validators/runner/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// 解析命令行参数
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 创建日志器
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting validator runner",
		zap.String("queue", cfg.Queue.Name),
		zap.String("scripts_dir", cfg.Runner.ScriptsDir))

	// 创建存储
	db, err := orm.New(ProvideORMConfig(cfg))
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// redis 连接：入队客户端、worker 与 inspector 共用同一个连接池
	ctx := context.Background()
	rdb, err := queue.NewRedis(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// 创建repositories
	scriptRepo := scriptrepo.NewMysqlRepositoryImpl(db.DB())
	executionRepo := executionrepo.NewMysqlRepositoryImpl(db.DB())
	scanResultRepo := scanresultrepo.NewMysqlRepositoryImpl(db.DB())

	// 队列客户端
	client := queue.NewClient(rdb)
	defer client.Close()
	enqueuer := queue.NewEnqueuer(client)
	inspector := queue.NewTaskInspector(queue.NewInspector(rdb))

	// worker 侧：执行器工厂 + 任务处理器 + asynq server
	factory := runner.NewExecutionManagerFactory(executionRepo, scriptRepo, scanResultRepo, zapLogger)
	handler := queue.NewScriptTaskHandler(factory, executionRepo, cfg, zapLogger)

	// services
	executionService := service.NewExecutionService(executionRepo, scriptRepo, enqueuer, inspector, cfg, zapLogger)
	scriptService := service.NewScriptService(scriptRepo, zapLogger)

	// API服务器
	apiServer := api.NewServer(
		api.NewExecutionAPI(executionService, zapLogger),
		api.NewScriptAPI(scriptService),
		api.NewCommonAPI(db, rdb, executionService),
		zapLogger,
	)

	app := NewApp(
		cfg,
		db,
		rdb,
		queue.NewServer(rdb, cfg.Queue, zapLogger),
		queue.NewServeMux(),
		handler,
		apiServer,
		reconcile.New(cfg, executionRepo, inspector, zapLogger),
	)

	// 启动worker
	if err := app.Worker.Start(app.Mux); err != nil {
		zapLogger.Fatal("Failed to start worker", zap.Error(err))
	}

	// 启动对账任务
	app.Reconciler.Start()

	// 启动HTTP服务器
	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.API.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting API server",
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	// 优雅关闭HTTP服务器
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown API server", zap.Error(err))
	}

	// 先停对账再停worker，worker 会等在途脚本收尾
	app.Reconciler.Stop()
	app.Worker.Shutdown()

	zapLogger.Info("Shutdown complete")
}
