package scriptrepo

import (
	"context"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domain "github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/internal/infra/persistence/testutil"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) domain.Repo {
	t.Helper()
	return NewMysqlRepositoryImpl(testutil.NewTestDB(t, &ScriptPo{}))
}

func TestCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	sc := &domain.Script{
		Name:         "data_quality_check",
		DisplayTitle: "数据质量检查",
		Description:  "检查关键表的空值率",
		ScriptPath:   "/opt/scripts/data_quality_check.py",
		ScriptType:   domain.TypePython,
		ParametersSchema: map[string]any{
			"tables": map[string]any{"type": "array"},
		},
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, sc))
	assert.NotZero(t, sc.ID)

	got, err := repo.GetByID(ctx, sc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "数据质量检查", got.DisplayTitle)
	assert.Equal(t, domain.TypePython, got.ScriptType)
	assert.Contains(t, got.ParametersSchema, "tables")
	assert.True(t, got.IsActive)

	byName, err := repo.GetByName(ctx, "data_quality_check")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, sc.ID, byName.ID)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByName(ctx, "no_such_script")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDuplicateName(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Script{
		Name: "unique_check", ScriptPath: "/opt/a.py", ScriptType: domain.TypePython,
	}))
	err := repo.Create(ctx, &domain.Script{
		Name: "unique_check", ScriptPath: "/opt/b.py", ScriptType: domain.TypePython,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

// TestListFilter 列表按名称排序，支持激活状态和类型过滤
func TestListFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, sc := range []*domain.Script{
		{Name: "zeta_check", ScriptPath: "/opt/z.py", ScriptType: domain.TypePython, IsActive: true},
		{Name: "alpha_check", ScriptPath: "/opt/a.py", ScriptType: domain.TypePython, IsActive: true},
		{Name: "mid_check", ScriptPath: "/opt/m.py", ScriptType: domain.TypePython, IsActive: false},
	} {
		require.NoError(t, repo.Create(ctx, sc))
	}

	all, err := repo.List(ctx, &domain.ScriptFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha_check", all[0].Name)
	assert.Equal(t, "zeta_check", all[2].Name)

	active, err := repo.List(ctx, &domain.ScriptFilter{IsActive: mo.Some(true)})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	none, err := repo.List(ctx, &domain.ScriptFilter{Type: mo.Some("shell")})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetOrCreateByNameCreates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	sc, err := repo.GetOrCreateByName(ctx, "adhoc_check", &domain.Script{
		Name:        "adhoc_check",
		ScriptPath:  "/tmp/adhoc_check.py",
		ScriptType:  domain.TypePython,
		Description: "动态脚本: adhoc_check",
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.NotZero(t, sc.ID)
	assert.Equal(t, "动态脚本: adhoc_check", sc.Description)

	got, err := repo.GetByName(ctx, "adhoc_check")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sc.ID, got.ID)
}

// TestGetOrCreateByNameExisting 已登记的脚本保留原路径，不被 defaults 覆盖
func TestGetOrCreateByNameExisting(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Script{
		Name: "shared_check", ScriptPath: "/original/shared_check.py",
		ScriptType: domain.TypePython, IsActive: true,
	}))

	sc, err := repo.GetOrCreateByName(ctx, "shared_check", &domain.Script{
		Name:       "shared_check",
		ScriptPath: "/elsewhere/shared_check.py",
		ScriptType: domain.TypePython,
	})
	require.NoError(t, err)
	assert.Equal(t, "/original/shared_check.py", sc.ScriptPath)

	all, err := repo.List(ctx, &domain.ScriptFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
