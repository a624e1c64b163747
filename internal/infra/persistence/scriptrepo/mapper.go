package scriptrepo

import (
	domain "github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

func (po *ScriptPo) ToDomain() *domain.Script {
	return &domain.Script{
		ID:               po.ID,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
		Name:             po.Name,
		DisplayTitle:     po.DisplayTitle,
		Description:      po.Description,
		ScriptPath:       po.ScriptPath,
		ScriptType:       po.ScriptType,
		ParametersSchema: po.ParametersSchema,
		IsActive:         po.IsActive,
	}
}

func (po *ScriptPo) FromDomain(in *domain.Script) *ScriptPo {
	return &ScriptPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Name:             in.Name,
		DisplayTitle:     in.DisplayTitle,
		Description:      in.Description,
		ScriptPath:       in.ScriptPath,
		ScriptType:       in.ScriptType,
		ParametersSchema: datatypes.JSONMap(in.ParametersSchema),
		IsActive:         in.IsActive,
	}
}
