package runner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/biz/scanresult"
	"github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/internal/infra/persistence/executionrepo"
	"github.com/validators/runner/internal/infra/persistence/scanresultrepo"
	"github.com/validators/runner/internal/infra/persistence/scriptrepo"
	"github.com/validators/runner/internal/infra/persistence/testutil"
	"go.uber.org/zap"
)

type testRepos struct {
	executions  execution.Repo
	scripts     script.Repo
	scanResults scanresult.Repo
	factory     *ExecutionManagerFactory
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()
	db := testutil.NewTestDB(t,
		&scriptrepo.ScriptPo{},
		&executionrepo.TaskExecutionPo{},
		&scanresultrepo.ScanResultPo{},
	)
	executions := executionrepo.NewMysqlRepositoryImpl(db)
	scripts := scriptrepo.NewMysqlRepositoryImpl(db)
	scanResults := scanresultrepo.NewMysqlRepositoryImpl(db)
	return &testRepos{
		executions:  executions,
		scripts:     scripts,
		scanResults: scanResults,
		factory:     NewExecutionManagerFactory(executions, scripts, scanResults, zap.NewNop()),
	}
}

func mustCreateExecution(t *testing.T, repos *testRepos, mutate func(*execution.TaskExecution)) *execution.TaskExecution {
	t.Helper()
	e := &execution.TaskExecution{
		TaskID:     "task-" + uuid.NewString()[:8],
		ScriptName: "demo_check",
		Status:     execution.ExecutionStatusPending,
		Parameters: map[string]any{"key": "value"},
	}
	if mutate != nil {
		mutate(e)
	}
	require.NoError(t, repos.executions.Create(context.Background(), e))
	return e
}

// TestFactoryLoadMissing 记录不存在时立即失败，绝不隐式创建
func TestFactoryLoadMissing(t *testing.T) {
	repos := newTestRepos(t)

	_, err := repos.factory.Load(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrExecutionNotFound)
	assert.Contains(t, err.Error(), "9999")
}

func TestMarkStarted(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkStarted(ctx))

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusStarted, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)
}

// TestMarkSuccessArchives 成功终态落库后旁路归档扫描结果
func TestMarkSuccessArchives(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkStarted(ctx))

	result := map[string]any{"message": "检查完成", "count": 3}
	require.NoError(t, m.MarkSuccess(ctx, result, 1.25, 8.5))

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusSuccess, got.Status)
	assert.Equal(t, "检查完成", got.Result["message"])
	assert.EqualValues(t, 3, got.Result["count"])
	assert.Empty(t, got.ErrorMessage)
	require.NotNil(t, got.ExecutionTime)
	assert.Equal(t, 1.25, *got.ExecutionTime)
	require.NotNil(t, got.MemoryUsage)
	assert.NotNil(t, got.CompletedAt)

	archived, err := repos.scanResults.GetByTaskID(ctx, e.TaskID)
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.Equal(t, "demo_check", archived.Filename)
	assert.Equal(t, "system", archived.Director)
	assert.Equal(t, "脚本执行结果 - demo_check", archived.Remark)
	assert.Equal(t, scanresult.StatusAvailable, archived.Status)
	assert.Equal(t, scanresult.ResultTypeScript, archived.ResultType)
	assert.Equal(t, "检查完成", archived.ScriptOutput)
	assert.Contains(t, archived.Content, "\"count\"")
	assert.Equal(t, 1.25, archived.ExecutionTime)
}

// TestScanResultUsesDisplayTitle 注册了展示标题的脚本归档时用标题做文件名
func TestScanResultUsesDisplayTitle(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	sc := &script.Script{
		Name:         "quality_check",
		DisplayTitle: "数据质量检查",
		ScriptPath:   "scripts/quality_check.py",
		ScriptType:   script.TypePython,
		IsActive:     true,
	}
	require.NoError(t, repos.scripts.Create(ctx, sc))

	e := mustCreateExecution(t, repos, func(e *execution.TaskExecution) {
		e.ScriptID = sc.ID
		e.ScriptName = sc.Name
		e.TriggeredBy = "alice"
	})

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkStarted(ctx))
	require.NoError(t, m.MarkSuccess(ctx, map[string]any{"content": "一切正常"}, 0.5, 1.0))

	archived, err := repos.scanResults.GetByTaskID(ctx, e.TaskID)
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.Equal(t, "数据质量检查", archived.Filename)
	assert.Equal(t, "脚本执行结果 - 数据质量检查", archived.Remark)
	assert.Equal(t, "alice", archived.Director)
	assert.Equal(t, "一切正常", archived.ScriptOutput)
}

// TestTerminalWriteBlocked 状态机守卫：终态后任何标记都报非法迁移
func TestTerminalWriteBlocked(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkStarted(ctx))
	require.NoError(t, m.MarkSuccess(ctx, map[string]any{}, 1, 1))

	assert.ErrorIs(t, m.MarkFailure(ctx, "late failure"), execution.ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkSuccess(ctx, nil, 0, 0), execution.ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkStarted(ctx), execution.ErrInvalidTransition)

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusSuccess, got.Status)
}

func TestMarkFailure(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkStarted(ctx))
	require.NoError(t, m.MarkFailure(ctx, "脚本执行超时 (超过540秒): scripts/demo.py"))

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusFailure, got.Status)
	assert.Contains(t, got.ErrorMessage, "脚本执行超时")
	assert.Nil(t, got.Result)
	assert.NotNil(t, got.CompletedAt)

	// 失败不归档
	archived, err := repos.scanResults.GetByTaskID(ctx, e.TaskID)
	require.NoError(t, err)
	assert.Nil(t, archived)
}

func TestUpdateTaskID(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, func(e *execution.TaskExecution) {
		e.TaskID = "temp_abcd1234"
	})

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)

	realID := uuid.NewString()
	require.NoError(t, m.UpdateTaskID(ctx, realID))
	assert.Equal(t, realID, m.Execution().TaskID)

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, realID, got.TaskID)
}

// TestUpdateStatusLenientFields 底层写接口容忍未知字段，只认识的照常落库
func TestUpdateStatusLenientFields(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)

	err = m.UpdateStatus(ctx, execution.ExecutionStatusFailure, map[string]any{
		"error_message": "手工标记失败",
		"bogus_field":   42,
	})
	require.NoError(t, err)

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusFailure, got.Status)
	assert.Equal(t, "手工标记失败", got.ErrorMessage)
}

func TestMarkRetry(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	e := mustCreateExecution(t, repos, nil)

	m, err := repos.factory.Load(ctx, e.ID)
	require.NoError(t, err)
	require.NoError(t, m.MarkRetry(ctx))

	got, err := repos.executions.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionStatusRetry, got.Status)
	assert.Nil(t, got.CompletedAt)
}
