package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/biz/script"
	domainError "github.com/validators/runner/internal/domain/error"
	"github.com/validators/runner/internal/queue"
	"github.com/validators/runner/pkg/config"
)

// ExecuteCommand 执行脚本命令，script_id / script_name+script_path / script_name 三选一
type ExecuteCommand struct {
	ScriptID    uint64
	ScriptName  string
	ScriptPath  string
	Parameters  map[string]any
	PageContext string
	TriggeredBy string
}

// ExecuteResult 提交结果
type ExecuteResult struct {
	TaskID      string
	ExecutionID uint64
	ScriptName  string
}

// ExecutionDetail 执行记录详情，叠加队列侧实时状态
type ExecutionDetail struct {
	Execution  *execution.TaskExecution
	QueueState string
}

// IExecutionService 执行记录服务接口
type IExecutionService interface {
	// 提交与取消
	ExecuteScript(ctx context.Context, cmd ExecuteCommand) (*ExecuteResult, error)
	CancelExecution(ctx context.Context, id uint64) (*execution.TaskExecution, error)

	// 查询
	GetExecution(ctx context.Context, ref string) (*ExecutionDetail, error)
	ListExecutions(ctx context.Context, filter *execution.ExecutionFilter) ([]*execution.TaskExecution, int64, error)
	GetStats(ctx context.Context, filter *execution.ExecutionFilter) (*execution.ExecutionStats, error)
	QueueStats(ctx context.Context) (*asynq.QueueInfo, error)
}

type ExecutionService struct {
	executions execution.Repo
	scripts    script.Repo
	enqueuer   queue.Enqueuer
	inspector  queue.TaskInspector
	cfg        *config.Config
	logger     *zap.Logger
}

// NewExecutionService 创建执行记录服务
func NewExecutionService(
	executions execution.Repo,
	scripts script.Repo,
	enqueuer queue.Enqueuer,
	inspector queue.TaskInspector,
	cfg *config.Config,
	logger *zap.Logger,
) IExecutionService {
	return &ExecutionService{
		executions: executions,
		scripts:    scripts,
		enqueuer:   enqueuer,
		inspector:  inspector,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *ExecutionService) ExecuteScript(ctx context.Context, cmd ExecuteCommand) (*ExecuteResult, error) {
	name, path, scriptID, err := s.resolveScript(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domainError.ErrScriptFileMissing, path)
	}

	triggeredBy := cmd.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "anonymous"
	}

	// 先落库占位再入队，队列分配的真实任务ID事后回填
	record := &execution.TaskExecution{
		TaskID:      queue.TempTaskIDPrefix + uuid.NewString()[:8],
		ScriptID:    scriptID,
		ScriptName:  name,
		TriggeredBy: triggeredBy,
		PageContext: cmd.PageContext,
		Parameters:  cmd.Parameters,
		Status:      execution.ExecutionStatusPending,
	}
	if err := s.executions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("创建执行记录失败: %w", err)
	}

	task, err := queue.NewExecuteTask(queue.ExecutePayload{
		ExecutionID: record.ID,
		Script:      queue.ScriptInfo{ID: scriptID, Name: name, Path: path},
		Parameters:  cmd.Parameters,
		TriggeredBy: triggeredBy,
		PageContext: cmd.PageContext,
	}, s.cfg.Queue)
	if err != nil {
		return nil, err
	}

	info, err := s.enqueuer.Enqueue(ctx, task, asynq.TaskID(uuid.NewString()))
	if err != nil {
		s.failEnqueue(ctx, record, err)
		return nil, fmt.Errorf("任务入队失败: %w", err)
	}

	if err := s.executions.Update(ctx, record.ID, execution.NewTaskExecutionPatch().WithTaskID(info.ID)); err != nil {
		s.logger.Error("回填任务ID失败",
			zap.Uint64("execution_id", record.ID),
			zap.String("task_id", info.ID),
			zap.Error(err))
	}

	s.logger.Info("脚本执行任务已提交",
		zap.String("script_name", name),
		zap.Uint64("execution_id", record.ID),
		zap.String("task_id", info.ID))

	return &ExecuteResult{TaskID: info.ID, ExecutionID: record.ID, ScriptName: name}, nil
}

// resolveScript 三种定位方式:
// script_id 查注册表（仅激活的）；script_name+script_path 按给定路径执行并登记；
// 仅 script_name 按 <scripts_dir>/<name>.py 推导。
// 同名脚本已登记时注册表保留原路径，本次执行仍用解析出来的路径
func (s *ExecutionService) resolveScript(ctx context.Context, cmd ExecuteCommand) (string, string, uint64, error) {
	switch {
	case cmd.ScriptID != 0:
		sc, err := s.scripts.GetByID(ctx, cmd.ScriptID)
		if err != nil {
			return "", "", 0, err
		}
		if sc == nil || !sc.IsActive {
			return "", "", 0, fmt.Errorf("%w: id=%d", domainError.ErrScriptNotFound, cmd.ScriptID)
		}
		return sc.Name, sc.ScriptPath, sc.ID, nil

	case cmd.ScriptName != "" && cmd.ScriptPath != "":
		id, err := s.registerDynamic(ctx, cmd.ScriptName, cmd.ScriptPath)
		if err != nil {
			return "", "", 0, err
		}
		return cmd.ScriptName, cmd.ScriptPath, id, nil

	case cmd.ScriptName != "":
		path := filepath.Join(s.cfg.Runner.ScriptsDir, cmd.ScriptName+".py")
		id, err := s.registerDynamic(ctx, cmd.ScriptName, path)
		if err != nil {
			return "", "", 0, err
		}
		return cmd.ScriptName, path, id, nil

	default:
		return "", "", 0, domainError.ErrScriptInfoRequired
	}
}

func (s *ExecutionService) registerDynamic(ctx context.Context, name, path string) (uint64, error) {
	sc, err := s.scripts.GetOrCreateByName(ctx, name, &script.Script{
		Name:        name,
		ScriptPath:  path,
		ScriptType:  script.TypePython,
		Description: fmt.Sprintf("动态脚本: %s", name),
		IsActive:    true,
	})
	if err != nil {
		return 0, err
	}
	return sc.ID, nil
}

// failEnqueue 入队失败直接标 FAILURE，不留永远 PENDING 的孤儿记录
func (s *ExecutionService) failEnqueue(ctx context.Context, record *execution.TaskExecution, cause error) {
	patch, err := record.Fail(fmt.Sprintf("任务入队失败: %v", cause), time.Now())
	if err != nil {
		return
	}
	if err := s.executions.Update(context.WithoutCancel(ctx), record.ID, patch); err != nil {
		s.logger.Error("标记入队失败状态失败",
			zap.Uint64("execution_id", record.ID),
			zap.Error(err))
	}
}

func (s *ExecutionService) GetExecution(ctx context.Context, ref string) (*ExecutionDetail, error) {
	e, err := s.findExecution(ctx, ref)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s", domainError.ErrExecutionNotFound, ref)
	}

	detail := &ExecutionDetail{Execution: e}
	if !e.Status.IsTerminal() && !strings.HasPrefix(e.TaskID, queue.TempTaskIDPrefix) {
		if info, qerr := s.inspector.GetTaskInfo(s.cfg.Queue.Name, e.TaskID); qerr == nil && info != nil {
			detail.QueueState = info.State.String()
		}
	}
	return detail, nil
}

// findExecution 纯数字按记录ID查，查不到或非数字再按队列任务ID查
func (s *ExecutionService) findExecution(ctx context.Context, ref string) (*execution.TaskExecution, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		e, err := s.executions.GetByID(ctx, id)
		if err != nil || e != nil {
			return e, err
		}
	}
	return s.executions.GetByTaskID(ctx, ref)
}

func (s *ExecutionService) ListExecutions(ctx context.Context, filter *execution.ExecutionFilter) ([]*execution.TaskExecution, int64, error) {
	return s.executions.List(ctx, filter)
}

func (s *ExecutionService) CancelExecution(ctx context.Context, id uint64) (*execution.TaskExecution, error) {
	e, err := s.executions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %d", domainError.ErrExecutionNotFound, id)
	}

	patch, err := e.Revoke(time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: 当前状态 %s", domainError.ErrExecutionNotCancelable, e.Status)
	}

	// 队列侧清理尽力而为: 等待中的直接删除，执行中的发取消信号，
	// 取消后的迟到写入由 worker 侧的状态机守卫拦住
	if e.TaskID != "" && !strings.HasPrefix(e.TaskID, queue.TempTaskIDPrefix) {
		if err := s.inspector.CancelProcessing(e.TaskID); err != nil {
			s.logger.Debug("取消执行中任务信号发送失败",
				zap.String("task_id", e.TaskID), zap.Error(err))
		}
		if err := s.inspector.DeleteTask(s.cfg.Queue.Name, e.TaskID); err != nil {
			s.logger.Debug("删除队列任务失败",
				zap.String("task_id", e.TaskID), zap.Error(err))
		}
	}

	if err := s.executions.Update(ctx, e.ID, patch); err != nil {
		return nil, err
	}

	s.logger.Info("任务已取消",
		zap.Uint64("execution_id", e.ID),
		zap.String("task_id", e.TaskID))
	return e, nil
}

func (s *ExecutionService) GetStats(ctx context.Context, filter *execution.ExecutionFilter) (*execution.ExecutionStats, error) {
	return s.executions.Stats(ctx, filter)
}

func (s *ExecutionService) QueueStats(ctx context.Context) (*asynq.QueueInfo, error) {
	return s.inspector.GetQueueInfo(s.cfg.Queue.Name)
}
