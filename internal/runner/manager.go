package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/spf13/cast"
	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/biz/scanresult"
	"github.com/validators/runner/internal/biz/script"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewExecutionManagerFactory)

// ExecutionManagerFactory 按执行记录ID装配 TaskExecutionManager
type ExecutionManagerFactory struct {
	executions  execution.Repo
	scripts     script.Repo
	scanResults scanresult.Repo
	log         *zap.Logger
}

func NewExecutionManagerFactory(
	executions execution.Repo,
	scripts script.Repo,
	scanResults scanresult.Repo,
	logger *zap.Logger,
) *ExecutionManagerFactory {
	return &ExecutionManagerFactory{
		executions:  executions,
		scripts:     scripts,
		scanResults: scanResults,
		log:         logger,
	}
}

// Load 加载执行记录，记录不存在立即失败，绝不隐式创建
func (f *ExecutionManagerFactory) Load(ctx context.Context, executionID uint64) (*TaskExecutionManager, error) {
	e, err := f.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		f.log.Error("task execution not found", zap.Uint64("execution_id", executionID))
		return nil, fmt.Errorf("%w: %d", ErrExecutionNotFound, executionID)
	}
	f.log.Info("task execution loaded", zap.Uint64("execution_id", executionID))
	return &TaskExecutionManager{
		executions:  f.executions,
		scripts:     f.scripts,
		scanResults: f.scanResults,
		log:         f.log,
		execution:   e,
	}, nil
}

// TaskExecutionManager 单条执行记录的状态管理
// 状态机: PENDING -> STARTED -> SUCCESS/FAILURE，REVOKED 由取消接口写入
type TaskExecutionManager struct {
	executions  execution.Repo
	scripts     script.Repo
	scanResults scanresult.Repo
	log         *zap.Logger

	execution *execution.TaskExecution
}

func (m *TaskExecutionManager) Execution() *execution.TaskExecution {
	return m.execution
}

// UpdateStatus 底层写接口，不做状态机校验，生命周期迁移优先走 MarkXxx
// fields 里不认识的键只告警不报错，容忍调用方和表结构漂移
func (m *TaskExecutionManager) UpdateStatus(ctx context.Context, status execution.ExecutionStatus, fields map[string]any) error {
	patch := execution.NewTaskExecutionPatch().WithStatus(status)
	m.execution.Status = status

	for key, value := range fields {
		switch key {
		case "started_at":
			t := cast.ToTime(value)
			patch.WithStartedAt(t)
			m.execution.StartedAt = &t
		case "completed_at":
			t := cast.ToTime(value)
			patch.WithCompletedAt(t)
			m.execution.CompletedAt = &t
		case "result":
			r := cast.ToStringMap(value)
			patch.WithResult(r)
			m.execution.Result = r
		case "error_message":
			s := cast.ToString(value)
			patch.WithErrorMessage(s)
			m.execution.ErrorMessage = s
		case "execution_time":
			v := cast.ToFloat64(value)
			patch.WithExecutionTime(v)
			m.execution.ExecutionTime = &v
		case "memory_usage":
			v := cast.ToFloat64(value)
			patch.WithMemoryUsage(v)
			m.execution.MemoryUsage = &v
		default:
			m.log.Warn("unknown field on task execution, ignored",
				zap.Uint64("execution_id", m.execution.ID),
				zap.String("field", key))
		}
	}

	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.log.Info("task execution status updated",
		zap.Uint64("execution_id", m.execution.ID),
		zap.String("status", string(status)))
	return nil
}

// MarkStarted PENDING/RETRY -> STARTED，记录开始时间
func (m *TaskExecutionManager) MarkStarted(ctx context.Context) error {
	patch, err := m.execution.Start(time.Now())
	if err != nil {
		return err
	}
	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.log.Info("task execution marked as started", zap.Uint64("execution_id", m.execution.ID))
	return nil
}

// MarkSuccess 写入结果和资源占用，然后旁路归档到扫描结果表
func (m *TaskExecutionManager) MarkSuccess(ctx context.Context, result map[string]any, executionTime, memoryUsage float64) error {
	patch, err := m.execution.Succeed(result, executionTime, memoryUsage, time.Now())
	if err != nil {
		return err
	}
	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.log.Info("task execution marked as success",
		zap.Uint64("execution_id", m.execution.ID),
		zap.Float64("execution_time", executionTime))

	m.saveScanResult(ctx, result, executionTime)
	return nil
}

func (m *TaskExecutionManager) MarkFailure(ctx context.Context, errorMessage string) error {
	patch, err := m.execution.Fail(errorMessage, time.Now())
	if err != nil {
		return err
	}
	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.log.Error("task execution marked as failure",
		zap.Uint64("execution_id", m.execution.ID),
		zap.String("error", errorMessage))
	return nil
}

// MarkRetry 队列重投递前的过渡态
func (m *TaskExecutionManager) MarkRetry(ctx context.Context) error {
	patch, err := m.execution.MarkRetry()
	if err != nil {
		return err
	}
	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.log.Info("task execution marked for retry", zap.Uint64("execution_id", m.execution.ID))
	return nil
}

// UpdateTaskID 回填队列分配的任务ID，创建记录时真实ID还未知
func (m *TaskExecutionManager) UpdateTaskID(ctx context.Context, taskID string) error {
	patch := execution.NewTaskExecutionPatch().WithTaskID(taskID)
	if err := m.executions.Update(ctx, m.execution.ID, patch); err != nil {
		return err
	}
	m.execution.TaskID = taskID
	m.log.Info("task execution task id updated",
		zap.Uint64("execution_id", m.execution.ID),
		zap.String("task_id", taskID))
	return nil
}

// saveScanResult 执行成功后的旁路归档，失败只记日志，绝不影响已落库的主状态
func (m *TaskExecutionManager) saveScanResult(ctx context.Context, result map[string]any, executionTime float64) {
	title := m.execution.ScriptName
	if m.execution.ScriptID != 0 {
		if s, err := m.scripts.GetByID(ctx, m.execution.ScriptID); err != nil {
			m.log.Warn("failed to load script for scan result", zap.Error(err))
		} else if s != nil {
			title = s.DialogTitle()
		}
	}

	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		m.log.Warn("failed to marshal scan result content", zap.Error(err))
		content = []byte(fmt.Sprint(result))
	}

	display := "脚本执行完成"
	if msg, ok := result["message"]; ok {
		display = cast.ToString(msg)
	} else if c, ok := result["content"]; ok {
		display = cast.ToString(c)
	}

	director := m.execution.TriggeredBy
	if director == "" {
		director = "system"
	}

	record := &scanresult.ScanResult{
		Filename:      title,
		Director:      director,
		Remark:        fmt.Sprintf("脚本执行结果 - %s", title),
		Status:        scanresult.StatusAvailable,
		Content:       string(content),
		ResultType:    scanresult.ResultTypeScript,
		ScriptName:    m.execution.ScriptName,
		TaskID:        m.execution.TaskID,
		ExecutionTime: executionTime,
		ScriptOutput:  display,
	}
	if err := m.scanResults.Create(ctx, record); err != nil {
		m.log.Error("failed to archive scan result",
			zap.Uint64("execution_id", m.execution.ID),
			zap.Error(err))
		return
	}
	m.log.Info("scan result archived",
		zap.Uint64("execution_id", m.execution.ID),
		zap.Uint64("scan_result_id", record.ID))
}
