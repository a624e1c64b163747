package service

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/validators/runner/internal/biz/script"
	domainError "github.com/validators/runner/internal/domain/error"
	"github.com/validators/runner/internal/infra/persistence/scriptrepo"
	"github.com/validators/runner/internal/infra/persistence/testutil"
	"go.uber.org/zap"
)

func newScriptService(t *testing.T) (IScriptService, script.Repo) {
	t.Helper()
	db := testutil.NewTestDB(t, &scriptrepo.ScriptPo{})
	repo := scriptrepo.NewMysqlRepositoryImpl(db)
	return NewScriptService(repo, zap.NewNop()), repo
}

// TestCreateScriptDefaults 省略类型和激活标记时落默认值
func TestCreateScriptDefaults(t *testing.T) {
	svc, _ := newScriptService(t)
	ctx := context.Background()

	sc, err := svc.CreateScript(ctx, CreateScriptCommand{
		Name:         "daily_check",
		DisplayTitle: "每日巡检",
		ScriptPath:   "/opt/scripts/daily_check.py",
		ParametersSchema: map[string]any{
			"tables": map[string]any{"type": "array"},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, sc.ID)
	assert.Equal(t, script.TypePython, sc.ScriptType)
	assert.True(t, sc.IsActive)

	got, err := svc.GetScript(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, "每日巡检", got.DisplayTitle)
	assert.Contains(t, got.ParametersSchema, "tables")
}

func TestCreateScriptInactive(t *testing.T) {
	svc, _ := newScriptService(t)
	inactive := false

	sc, err := svc.CreateScript(context.Background(), CreateScriptCommand{
		Name:       "paused_check",
		ScriptPath: "/opt/scripts/paused_check.py",
		IsActive:   &inactive,
	})
	require.NoError(t, err)
	assert.False(t, sc.IsActive)
}

func TestCreateScriptDuplicateName(t *testing.T) {
	svc, _ := newScriptService(t)
	ctx := context.Background()

	cmd := CreateScriptCommand{Name: "unique_check", ScriptPath: "/opt/scripts/unique_check.py"}
	_, err := svc.CreateScript(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.CreateScript(ctx, cmd)
	assert.ErrorIs(t, err, domainError.ErrScriptAlreadyExists)
}

// TestCreateScriptUnsupportedType 目前只支持 python 脚本
func TestCreateScriptUnsupportedType(t *testing.T) {
	svc, _ := newScriptService(t)

	_, err := svc.CreateScript(context.Background(), CreateScriptCommand{
		Name:       "shell_check",
		ScriptPath: "/opt/scripts/shell_check.sh",
		ScriptType: "shell",
	})
	require.Error(t, err)

	var bizErr *domainError.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, "UNSUPPORTED_SCRIPT_TYPE", bizErr.Code())
	assert.Contains(t, bizErr.Message(), "shell")
}

func TestGetScriptNotFound(t *testing.T) {
	svc, _ := newScriptService(t)

	_, err := svc.GetScript(context.Background(), 9999)
	assert.ErrorIs(t, err, domainError.ErrScriptNotFound)
}

func TestListScriptsFilter(t *testing.T) {
	svc, repo := newScriptService(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &script.Script{
		Name: "active_one", ScriptPath: "/opt/a.py", ScriptType: script.TypePython, IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &script.Script{
		Name: "active_two", ScriptPath: "/opt/b.py", ScriptType: script.TypePython, IsActive: true,
	}))
	require.NoError(t, repo.Create(ctx, &script.Script{
		Name: "inactive_one", ScriptPath: "/opt/c.py", ScriptType: script.TypePython, IsActive: false,
	}))

	all, err := svc.ListScripts(ctx, &script.ScriptFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListScripts(ctx, &script.ScriptFilter{IsActive: mo.Some(true)})
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, sc := range active {
		assert.True(t, sc.IsActive)
	}
}
