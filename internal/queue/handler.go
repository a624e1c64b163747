package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/runner"
	"github.com/validators/runner/pkg/config"
	"go.uber.org/zap"
)

var HandlerProvider = wire.NewSet(NewScriptTaskHandler)

// ScriptTaskHandler script:execute 的 worker 入口
// 脚本层的失败在执行器内部就转成了 FAILURE 记录，不触发队列重试；
// 只有基础设施错误（记录读不到、状态写不进去）返回 error 交给 asynq 按固定间隔重投
type ScriptTaskHandler struct {
	factory    *runner.ExecutionManagerFactory
	executions execution.Repo
	runnerCfg  config.RunnerConfig
	queueCfg   config.QueueConfig
	log        *zap.Logger
}

func NewScriptTaskHandler(
	factory *runner.ExecutionManagerFactory,
	executions execution.Repo,
	cfg *config.Config,
	logger *zap.Logger,
) *ScriptTaskHandler {
	return &ScriptTaskHandler{
		factory:    factory,
		executions: executions,
		runnerCfg:  cfg.Runner,
		queueCfg:   cfg.Queue,
		log:        logger,
	}
}

func (h *ScriptTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeExecuteScript, h.HandleExecuteScript)
}

func (h *ScriptTaskHandler) HandleExecuteScript(ctx context.Context, t *asynq.Task) error {
	var p ExecutePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.log.Error("invalid execute payload", zap.Error(err))
		return fmt.Errorf("unmarshal execute payload: %v: %w", err, asynq.SkipRetry)
	}

	taskID, _ := asynq.GetTaskID(ctx)
	h.log.Info("script task received",
		zap.String("task_id", taskID),
		zap.Uint64("execution_id", p.ExecutionID),
		zap.String("script", p.Script.Name))

	// 防重复执行：队列重投递或手工重触发时，已终态的记录直接跳过
	record, err := h.executions.GetByID(ctx, p.ExecutionID)
	if err != nil {
		return h.retryOrGiveUp(ctx, t, nil, p, fmt.Errorf("load execution record: %w", err))
	}
	if record == nil {
		h.log.Error("execution record missing", zap.Uint64("execution_id", p.ExecutionID))
		h.writeResult(t, map[string]any{
			"status":      "error",
			"error":       fmt.Sprintf("任务执行记录 %d 不存在", p.ExecutionID),
			"script_name": p.Script.Name,
		})
		return nil
	}
	if record.Status == execution.ExecutionStatusSuccess || record.Status == execution.ExecutionStatusFailure {
		h.log.Warn("execution already finished, skipping duplicate delivery",
			zap.Uint64("execution_id", p.ExecutionID),
			zap.String("status", string(record.Status)))
		h.writeResult(t, map[string]any{
			"status":      runner.StatusSkipped,
			"message":     fmt.Sprintf("任务已执行过，状态: %s", record.Status),
			"script_name": p.Script.Name,
		})
		return nil
	}

	manager, err := h.factory.Load(ctx, p.ExecutionID)
	if err != nil {
		if errors.Is(err, runner.ErrExecutionNotFound) {
			h.writeResult(t, map[string]any{
				"status":      "error",
				"error":       fmt.Sprintf("任务执行记录 %d 不存在", p.ExecutionID),
				"script_name": p.Script.Name,
			})
			return nil
		}
		return h.retryOrGiveUp(ctx, t, nil, p, err)
	}

	executor := runner.NewUnifiedScriptExecutor(
		manager, h.runnerCfg, p.Script.Descriptor(), p.Parameters, p.PageContext, h.log)

	result, err := executor.Run(ctx)
	if err != nil {
		return h.retryOrGiveUp(ctx, t, manager, p, err)
	}

	h.writeResult(t, result.ToMap())
	return nil
}

// retryOrGiveUp 基础设施错误的重试决策
// 还有重试额度：记录挪到 RETRY 过渡态后把错误抛回 asynq；
// 额度耗尽：尽力落一条 FAILURE，返回 nil 让任务以"已记录的失败"收场，不再无限重投
func (h *ScriptTaskHandler) retryOrGiveUp(ctx context.Context, t *asynq.Task, manager *runner.TaskExecutionManager, p ExecutePayload, cause error) error {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	if retried < maxRetry {
		h.log.Warn("infrastructure failure, scheduling retry",
			zap.Uint64("execution_id", p.ExecutionID),
			zap.Int("attempt", retried+1),
			zap.Int("max_retry", maxRetry),
			zap.Error(cause))
		if manager != nil {
			if err := manager.MarkRetry(context.WithoutCancel(ctx)); err != nil {
				h.log.Warn("failed to mark retry state", zap.Error(err))
			}
		}
		return cause
	}

	h.log.Error("retries exhausted, recording terminal failure",
		zap.Uint64("execution_id", p.ExecutionID),
		zap.Error(cause))
	if manager != nil {
		writeCtx := context.WithoutCancel(ctx)
		if err := manager.MarkFailure(writeCtx, fmt.Sprintf("任务在 %d 次重试后仍然失败: %v", maxRetry, cause)); err != nil {
			h.log.Error("failed to record terminal failure", zap.Error(err))
		}
	}
	h.writeResult(t, map[string]any{
		"status":      "error",
		"error":       cause.Error(),
		"script_name": p.Script.Name,
	})
	return nil
}

// writeResult 把结果写进任务元数据，查询接口可以从 Inspector 读到
func (h *ScriptTaskHandler) writeResult(t *asynq.Task, result map[string]any) {
	w := t.ResultWriter()
	if w == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		h.log.Warn("failed to marshal task result", zap.Error(err))
		return
	}
	if _, err := w.Write(data); err != nil {
		h.log.Warn("failed to write task result", zap.Error(err))
	}
}
