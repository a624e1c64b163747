package queue

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/validators/runner/pkg/config"
	"go.uber.org/zap"
)

var ServerProvider = wire.NewSet(NewServer, NewServeMux)

// NewServer 队列 worker
// 重试间隔固定为 retry_delay，不做指数退避；
// 重试次数耗尽后由 ErrorHandler 记日志，残留的 RETRY 记录交给对账任务收口
func NewServer(rdb *redis.Client, cfg config.QueueConfig, logger *zap.Logger) *asynq.Server {
	return asynq.NewServerFromRedisClient(rdb, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			cfg.Name: 10,
		},
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			return cfg.RetryDelay
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				logger.Error("asynq task permanently failed",
					zap.String("task_type", task.Type()),
					zap.Error(err))
				return
			}
			logger.Warn("asynq task failed, will retry",
				zap.String("task_type", task.Type()),
				zap.Int("retried", retried),
				zap.Int("max_retry", maxRetry),
				zap.Error(err))
		}),
	})
}

func NewServeMux() *asynq.ServeMux {
	return asynq.NewServeMux()
}
