package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/validators/runner/internal/biz/script"
	domainError "github.com/validators/runner/internal/domain/error"
)

// CreateScriptCommand 登记脚本命令
type CreateScriptCommand struct {
	Name             string
	DisplayTitle     string
	Description      string
	ScriptPath       string
	ScriptType       string
	ParametersSchema map[string]any
	IsActive         *bool
}

// IScriptService 脚本注册表服务接口
type IScriptService interface {
	CreateScript(ctx context.Context, cmd CreateScriptCommand) (*script.Script, error)
	GetScript(ctx context.Context, id uint64) (*script.Script, error)
	ListScripts(ctx context.Context, filter *script.ScriptFilter) ([]*script.Script, error)
}

type ScriptService struct {
	scripts script.Repo
	logger  *zap.Logger
}

// NewScriptService 创建脚本服务
func NewScriptService(scripts script.Repo, logger *zap.Logger) IScriptService {
	return &ScriptService{scripts: scripts, logger: logger}
}

func (s *ScriptService) CreateScript(ctx context.Context, cmd CreateScriptCommand) (*script.Script, error) {
	if cmd.ScriptType != "" && cmd.ScriptType != script.TypePython {
		return nil, domainError.NewBusinessError("UNSUPPORTED_SCRIPT_TYPE",
			fmt.Sprintf("不支持的脚本类型: %s", cmd.ScriptType), nil)
	}

	// 检查脚本名是否已存在
	existing, err := s.scripts.GetByName(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", domainError.ErrScriptAlreadyExists, cmd.Name)
	}

	sc := &script.Script{
		Name:             cmd.Name,
		DisplayTitle:     cmd.DisplayTitle,
		Description:      cmd.Description,
		ScriptPath:       cmd.ScriptPath,
		ScriptType:       cmd.ScriptType,
		ParametersSchema: cmd.ParametersSchema,
		IsActive:         true,
	}
	if sc.ScriptType == "" {
		sc.ScriptType = script.TypePython
	}
	if cmd.IsActive != nil {
		sc.IsActive = *cmd.IsActive
	}

	if err := s.scripts.Create(ctx, sc); err != nil {
		return nil, err
	}

	s.logger.Info("脚本已登记",
		zap.String("name", sc.Name),
		zap.String("script_path", sc.ScriptPath))
	return sc, nil
}

func (s *ScriptService) GetScript(ctx context.Context, id uint64) (*script.Script, error) {
	sc, err := s.scripts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, fmt.Errorf("%w: id=%d", domainError.ErrScriptNotFound, id)
	}
	return sc, nil
}

func (s *ScriptService) ListScripts(ctx context.Context, filter *script.ScriptFilter) ([]*script.Script, error) {
	return s.scripts.List(ctx, filter)
}
