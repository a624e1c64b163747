package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/biz/script"
	domainError "github.com/validators/runner/internal/domain/error"
	"github.com/validators/runner/internal/infra/persistence/executionrepo"
	"github.com/validators/runner/internal/infra/persistence/scriptrepo"
	"github.com/validators/runner/internal/infra/persistence/testutil"
	"github.com/validators/runner/internal/queue"
	"github.com/validators/runner/pkg/config"
	"go.uber.org/zap"
)

type fakeEnqueuer struct {
	lastTask *asynq.Task
	lastOpts []asynq.Option
	info     *asynq.TaskInfo
	err      error
	calls    int
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.calls++
	f.lastTask = task
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type fakeInspector struct {
	taskInfo  *asynq.TaskInfo
	taskErr   error
	queueInfo *asynq.QueueInfo
	queueErr  error

	lookups   []string
	cancelled []string
	deleted   []string
}

func (f *fakeInspector) GetTaskInfo(queueName, id string) (*asynq.TaskInfo, error) {
	f.lookups = append(f.lookups, id)
	return f.taskInfo, f.taskErr
}

func (f *fakeInspector) DeleteTask(queueName, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInspector) CancelProcessing(id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeInspector) GetQueueInfo(queueName string) (*asynq.QueueInfo, error) {
	return f.queueInfo, f.queueErr
}

type serviceFixture struct {
	svc        IExecutionService
	executions execution.Repo
	scripts    script.Repo
	enqueuer   *fakeEnqueuer
	inspector  *fakeInspector
	cfg        *config.Config
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := testutil.NewTestDB(t,
		&scriptrepo.ScriptPo{},
		&executionrepo.TaskExecutionPo{},
	)
	executions := executionrepo.NewMysqlRepositoryImpl(db)
	scripts := scriptrepo.NewMysqlRepositoryImpl(db)

	cfg := &config.Config{
		Queue: config.QueueConfig{
			Name:        "scripts",
			MaxRetry:    3,
			HardTimeout: 600 * time.Second,
		},
		Runner: config.RunnerConfig{ScriptsDir: t.TempDir()},
	}
	enqueuer := &fakeEnqueuer{info: &asynq.TaskInfo{ID: "queued-task-id", Queue: "scripts"}}
	inspector := &fakeInspector{}

	return &serviceFixture{
		svc:        NewExecutionService(executions, scripts, enqueuer, inspector, cfg, zap.NewNop()),
		executions: executions,
		scripts:    scripts,
		enqueuer:   enqueuer,
		inspector:  inspector,
		cfg:        cfg,
	}
}

func (f *serviceFixture) writeScriptFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.cfg.Runner.ScriptsDir, name)
	require.NoError(t, os.WriteFile(path, []byte("print('{}')\n"), 0o755))
	return path
}

// TestExecuteByScriptID 注册表模式：按ID定位激活脚本并入队
func TestExecuteByScriptID(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	path := f.writeScriptFile(t, "registered.py")

	sc := &script.Script{
		Name:       "registered",
		ScriptPath: path,
		ScriptType: script.TypePython,
		IsActive:   true,
	}
	require.NoError(t, f.scripts.Create(ctx, sc))

	result, err := f.svc.ExecuteScript(ctx, ExecuteCommand{
		ScriptID:    sc.ID,
		Parameters:  map[string]any{"limit": 5},
		TriggeredBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "queued-task-id", result.TaskID)
	assert.Equal(t, "registered", result.ScriptName)
	assert.NotZero(t, result.ExecutionID)

	// 占位ID已被队列分配的真实ID覆盖
	got, err := f.executions.GetByID(ctx, result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, "queued-task-id", got.TaskID)
	assert.Equal(t, execution.ExecutionStatusPending, got.Status)
	assert.Equal(t, "alice", got.TriggeredBy)
	assert.Equal(t, sc.ID, got.ScriptID)

	require.Equal(t, 1, f.enqueuer.calls)
	assert.Equal(t, queue.TypeExecuteScript, f.enqueuer.lastTask.Type())
	assert.Len(t, f.enqueuer.lastOpts, 1)

	var p queue.ExecutePayload
	require.NoError(t, json.Unmarshal(f.enqueuer.lastTask.Payload(), &p))
	assert.Equal(t, result.ExecutionID, p.ExecutionID)
	assert.Equal(t, path, p.Script.Path)
	assert.Equal(t, "alice", p.TriggeredBy)
}

func TestExecuteInactiveScript(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	sc := &script.Script{
		Name:       "disabled",
		ScriptPath: f.writeScriptFile(t, "disabled.py"),
		ScriptType: script.TypePython,
		IsActive:   false,
	}
	require.NoError(t, f.scripts.Create(ctx, sc))

	_, err := f.svc.ExecuteScript(ctx, ExecuteCommand{ScriptID: sc.ID})
	assert.ErrorIs(t, err, domainError.ErrScriptNotFound)
	assert.Zero(t, f.enqueuer.calls)
}

// TestExecuteByNameAndPath 动态模式：按给定路径执行并自动登记
func TestExecuteByNameAndPath(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	path := f.writeScriptFile(t, "adhoc.py")

	result, err := f.svc.ExecuteScript(ctx, ExecuteCommand{
		ScriptName: "adhoc",
		ScriptPath: path,
	})
	require.NoError(t, err)

	registered, err := f.scripts.GetByName(ctx, "adhoc")
	require.NoError(t, err)
	require.NotNil(t, registered)
	assert.Equal(t, "动态脚本: adhoc", registered.Description)
	assert.Equal(t, path, registered.ScriptPath)
	assert.True(t, registered.IsActive)

	got, err := f.executions.GetByID(ctx, result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", got.TriggeredBy)
}

// TestExecuteByNameOnly 仅名称时按 <scripts_dir>/<name>.py 推导路径
func TestExecuteByNameOnly(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	expected := f.writeScriptFile(t, "derived.py")

	_, err := f.svc.ExecuteScript(ctx, ExecuteCommand{ScriptName: "derived"})
	require.NoError(t, err)

	var p queue.ExecutePayload
	require.NoError(t, json.Unmarshal(f.enqueuer.lastTask.Payload(), &p))
	assert.Equal(t, expected, p.Script.Path)
}

// TestExecuteKeepsLocalPath 同名脚本已登记时注册表保留原路径，本次执行用新路径
func TestExecuteKeepsLocalPath(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.scripts.Create(ctx, &script.Script{
		Name:       "shared",
		ScriptPath: "/original/shared.py",
		ScriptType: script.TypePython,
		IsActive:   true,
	}))

	localPath := f.writeScriptFile(t, "shared_local.py")
	_, err := f.svc.ExecuteScript(ctx, ExecuteCommand{
		ScriptName: "shared",
		ScriptPath: localPath,
	})
	require.NoError(t, err)

	registered, err := f.scripts.GetByName(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "/original/shared.py", registered.ScriptPath)

	var p queue.ExecutePayload
	require.NoError(t, json.Unmarshal(f.enqueuer.lastTask.Payload(), &p))
	assert.Equal(t, localPath, p.Script.Path)
}

func TestExecuteNoScriptInfo(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ExecuteScript(context.Background(), ExecuteCommand{})
	assert.ErrorIs(t, err, domainError.ErrScriptInfoRequired)
}

// TestExecuteFileMissing 入队前校验文件存在，不留必然失败的记录
func TestExecuteFileMissing(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ExecuteScript(ctx, ExecuteCommand{
		ScriptName: "ghost",
		ScriptPath: "/nonexistent/ghost.py",
	})
	assert.ErrorIs(t, err, domainError.ErrScriptFileMissing)
	assert.Zero(t, f.enqueuer.calls)

	total, err := f.executions.Count(ctx, &execution.ExecutionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

// TestExecuteEnqueueFailure 入队失败时记录直接标 FAILURE，不留永远 PENDING 的孤儿
func TestExecuteEnqueueFailure(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.enqueuer.err = errors.New("redis connection refused")

	path := f.writeScriptFile(t, "doomed.py")
	_, err := f.svc.ExecuteScript(ctx, ExecuteCommand{ScriptName: "doomed", ScriptPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "任务入队失败")

	records, total, err := f.executions.List(ctx, &execution.ExecutionFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, execution.ExecutionStatusFailure, records[0].Status)
	assert.Contains(t, records[0].ErrorMessage, "任务入队失败")
}

func TestGetExecutionByRecordID(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	e := &execution.TaskExecution{
		TaskID:     "lookup-task",
		ScriptName: "demo",
		Status:     execution.ExecutionStatusSuccess,
	}
	require.NoError(t, f.executions.Create(ctx, e))

	detail, err := f.svc.GetExecution(ctx, strconv.FormatUint(e.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, e.ID, detail.Execution.ID)
	// 终态不再查询队列
	assert.Empty(t, detail.QueueState)
	assert.Empty(t, f.inspector.lookups)
}

// TestGetExecutionByTaskID id 参数兼容记录ID和队列任务ID两种形式
func TestGetExecutionByTaskID(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.inspector.taskInfo = &asynq.TaskInfo{ID: "live-task", State: asynq.TaskStateActive}

	e := &execution.TaskExecution{
		TaskID:     "live-task",
		ScriptName: "demo",
		Status:     execution.ExecutionStatusStarted,
	}
	require.NoError(t, f.executions.Create(ctx, e))

	detail, err := f.svc.GetExecution(ctx, "live-task")
	require.NoError(t, err)
	assert.Equal(t, e.ID, detail.Execution.ID)
	assert.Equal(t, "active", detail.QueueState)
}

func TestGetExecutionNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetExecution(context.Background(), "no-such-task")
	assert.ErrorIs(t, err, domainError.ErrExecutionNotFound)
}

// TestCancelPending 取消等待中的任务：队列任务删除，记录转 REVOKED
func TestCancelPending(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	e := &execution.TaskExecution{
		TaskID:     "cancel-me",
		ScriptName: "demo",
		Status:     execution.ExecutionStatusPending,
	}
	require.NoError(t, f.executions.Create(ctx, e))

	cancelled, err := f.svc.CancelExecution(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusRevoked, cancelled.Status)
	assert.Contains(t, f.inspector.cancelled, "cancel-me")
	assert.Contains(t, f.inspector.deleted, "cancel-me")

	got, err := f.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusRevoked, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

// TestCancelPlaceholderTaskID 占位任务ID不会去碰队列
func TestCancelPlaceholderTaskID(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	e := &execution.TaskExecution{
		TaskID:     queue.TempTaskIDPrefix + "ab12cd34",
		ScriptName: "demo",
		Status:     execution.ExecutionStatusPending,
	}
	require.NoError(t, f.executions.Create(ctx, e))

	_, err := f.svc.CancelExecution(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, f.inspector.cancelled)
	assert.Empty(t, f.inspector.deleted)
}

func TestCancelTerminal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	e := &execution.TaskExecution{
		TaskID:     "done-task",
		ScriptName: "demo",
		Status:     execution.ExecutionStatusSuccess,
	}
	require.NoError(t, f.executions.Create(ctx, e))

	_, err := f.svc.CancelExecution(ctx, e.ID)
	assert.ErrorIs(t, err, domainError.ErrExecutionNotCancelable)
}

func TestCancelMissing(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CancelExecution(context.Background(), 4242)
	assert.ErrorIs(t, err, domainError.ErrExecutionNotFound)
}

func TestListExecutionsPagination(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := &execution.TaskExecution{
			TaskID:     "list-task-" + strconv.Itoa(i),
			ScriptName: "demo",
			Status:     execution.ExecutionStatusSuccess,
		}
		require.NoError(t, f.executions.Create(ctx, e))
	}

	records, total, err := f.svc.ListExecutions(ctx, &execution.ExecutionFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, records, 2)

	records, _, err = f.svc.ListExecutions(ctx, &execution.ExecutionFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListExecutionsStatusFilter(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for i, status := range []execution.ExecutionStatus{
		execution.ExecutionStatusSuccess,
		execution.ExecutionStatusFailure,
		execution.ExecutionStatusSuccess,
	} {
		e := &execution.TaskExecution{
			TaskID:     "filter-task-" + strconv.Itoa(i),
			ScriptName: "demo",
			Status:     status,
		}
		require.NoError(t, f.executions.Create(ctx, e))
	}

	records, total, err := f.svc.ListExecutions(ctx, &execution.ExecutionFilter{
		Status: mo.Some(execution.ExecutionStatusSuccess),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range records {
		assert.Equal(t, execution.ExecutionStatusSuccess, r.Status)
	}
}

// TestGetStats Running 桶聚合 STARTED 与 RETRY 两种状态
func TestGetStats(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	statuses := []execution.ExecutionStatus{
		execution.ExecutionStatusSuccess,
		execution.ExecutionStatusSuccess,
		execution.ExecutionStatusFailure,
		execution.ExecutionStatusStarted,
		execution.ExecutionStatusRetry,
		execution.ExecutionStatusPending,
		execution.ExecutionStatusRevoked,
	}
	for i, status := range statuses {
		e := &execution.TaskExecution{
			TaskID:     "stats-task-" + strconv.Itoa(i),
			ScriptName: "demo",
			Status:     status,
		}
		require.NoError(t, f.executions.Create(ctx, e))
	}

	stats, err := f.svc.GetStats(ctx, &execution.ExecutionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 7, stats.Total)
	assert.EqualValues(t, 2, stats.Success)
	assert.EqualValues(t, 1, stats.Failed)
	assert.EqualValues(t, 2, stats.Running)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Revoked)
}

func TestQueueStats(t *testing.T) {
	f := newServiceFixture(t)
	f.inspector.queueInfo = &asynq.QueueInfo{Queue: "scripts", Size: 4, Pending: 3, Active: 1}

	info, err := f.svc.QueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "scripts", info.Queue)
	assert.Equal(t, 4, info.Size)
}
