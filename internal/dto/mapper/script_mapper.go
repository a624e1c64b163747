package mapper

import (
	"github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/internal/dto/response"
)

// ScriptMapper 脚本注册表映射器
type ScriptMapper struct{}

// NewScriptMapper 创建脚本映射器
func NewScriptMapper() *ScriptMapper {
	return &ScriptMapper{}
}

// ToScriptResponse 将脚本实体转换为响应DTO
func (m *ScriptMapper) ToScriptResponse(s *script.Script) response.ScriptResponse {
	return response.ScriptResponse{
		ID:               s.ID,
		Name:             s.Name,
		DisplayTitle:     s.DisplayTitle,
		Description:      s.Description,
		ScriptPath:       s.ScriptPath,
		ScriptType:       s.ScriptType,
		ParametersSchema: s.ParametersSchema,
		IsActive:         s.IsActive,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ToScriptListResponse 将脚本实体列表转换为列表响应DTO
func (m *ScriptMapper) ToScriptListResponse(scripts []*script.Script) response.ListScriptResponse {
	data := make([]response.ScriptResponse, len(scripts))
	for i, s := range scripts {
		data[i] = m.ToScriptResponse(s)
	}
	return response.ListScriptResponse{
		Data:  data,
		Total: int64(len(scripts)),
	}
}
