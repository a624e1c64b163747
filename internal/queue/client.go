package queue

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/validators/runner/pkg/config"
)

var ClientProvider = wire.NewSet(NewRedis, NewClient, NewEnqueuer, NewInspector, NewTaskInspector)

// NewRedis 建立 redis 连接，队列 client/server/inspector 共用这一个连接池
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClientFromRedisClient(rdb)
}

func NewInspector(rdb *redis.Client) *asynq.Inspector {
	return asynq.NewInspectorFromRedisClient(rdb)
}

// Enqueuer 入队的最小接口，服务层依赖它而不是具体 client，便于测试替身
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type enqueuerImpl struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &enqueuerImpl{client: client}
}

func (e *enqueuerImpl) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}
	return info, nil
}

// TaskInspector 队列侧查询与控制的最小接口，取消和状态查询用
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	CancelProcessing(id string) error
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

func NewTaskInspector(i *asynq.Inspector) TaskInspector { return i }
