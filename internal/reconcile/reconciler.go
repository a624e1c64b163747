package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/queue"
	"github.com/validators/runner/pkg/config"
)

var Provider = wire.NewSet(New)

// Reconciler 定期对账: 长时间停留在非终态、且队列里已经没有对应任务的
// 执行记录会被标记为 FAILURE。worker 崩溃、redis 数据丢失或入队半途失败
// 留下的孤儿记录都从这里收口。
type Reconciler struct {
	cron       *cron.Cron
	executions execution.Repo
	inspector  queue.TaskInspector
	cfg        config.ReconcileConfig
	queueName  string
	logger     *zap.Logger
}

func New(cfg *config.Config, executions execution.Repo, inspector queue.TaskInspector, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		cron:       cron.New(),
		executions: executions,
		inspector:  inspector,
		cfg:        cfg.Reconcile,
		queueName:  cfg.Queue.Name,
		logger:     logger,
	}
}

func (r *Reconciler) Start() error {
	if !r.cfg.Enabled {
		r.logger.Info("reconciler disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.cfg.Spec, func() {
		if err := r.Sweep(context.Background()); err != nil {
			r.logger.Error("reconcile sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("reconciler started",
		zap.String("spec", r.cfg.Spec),
		zap.Duration("stale_after", r.cfg.StaleAfter))
	return nil
}

func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep 单轮对账
func (r *Reconciler) Sweep(ctx context.Context) error {
	olderThan := time.Now().Add(-r.cfg.StaleAfter)
	stale, err := r.executions.FindStale(ctx, []execution.ExecutionStatus{
		execution.ExecutionStatusPending,
		execution.ExecutionStatusStarted,
		execution.ExecutionStatusRetry,
	}, olderThan)
	if err != nil {
		return err
	}

	for _, e := range stale {
		if r.taskAlive(e.TaskID) {
			continue
		}
		r.failStale(ctx, e)
	}
	return nil
}

// taskAlive 判断队列里是否还有活的任务。
// redis 查询失败时按存活处理，对账宁可什么都不做也不能误杀
func (r *Reconciler) taskAlive(taskID string) bool {
	if taskID == "" || strings.HasPrefix(taskID, queue.TempTaskIDPrefix) {
		return false
	}

	info, err := r.inspector.GetTaskInfo(r.queueName, taskID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return false
		}
		r.logger.Warn("queue lookup failed, skipping stale execution",
			zap.String("task_id", taskID),
			zap.Error(err))
		return true
	}

	switch info.State {
	case asynq.TaskStateCompleted, asynq.TaskStateArchived:
		return false
	}
	return true
}

func (r *Reconciler) failStale(ctx context.Context, e *execution.TaskExecution) {
	previous := e.Status

	message := "执行超时，任务已失联"
	if previous == execution.ExecutionStatusPending {
		message = "队列任务丢失，任务未执行"
	}

	patch, err := e.Fail(message, time.Now())
	if err != nil {
		return
	}
	if err := r.executions.Update(ctx, e.ID, patch); err != nil {
		r.logger.Error("failed to mark stale execution as failed",
			zap.Uint64("execution_id", e.ID),
			zap.Error(err))
		return
	}

	r.logger.Warn("stale execution marked as failed",
		zap.Uint64("execution_id", e.ID),
		zap.String("task_id", e.TaskID),
		zap.String("previous_status", string(previous)))
}
