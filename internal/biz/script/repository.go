package script

import (
	"context"
	"errors"

	"github.com/samber/mo"
)

var (
	ErrMissingName = errors.New("script descriptor missing name")
	ErrMissingPath = errors.New("script descriptor missing path")
)

type Repo interface {
	Create(ctx context.Context, script *Script) error
	GetByID(ctx context.Context, id uint64) (*Script, error)
	GetByName(ctx context.Context, name string) (*Script, error)
	List(ctx context.Context, filter *ScriptFilter) ([]*Script, error)

	// GetOrCreateByName 按名称查找，不存在则用 defaults 创建（动态脚本注册）
	GetOrCreateByName(ctx context.Context, name string, defaults *Script) (*Script, error)
}

type ScriptFilter struct {
	IsActive mo.Option[bool]
	Type     mo.Option[string]
}
