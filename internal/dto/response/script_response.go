package response

import (
	"time"
)

// ScriptResponse 脚本注册表响应
type ScriptResponse struct {
	ID               uint64         `json:"id"`
	Name             string         `json:"name"`
	DisplayTitle     string         `json:"display_title"`
	Description      string         `json:"description"`
	ScriptPath       string         `json:"script_path"`
	ScriptType       string         `json:"script_type"`
	ParametersSchema map[string]any `json:"parameters_schema"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ListScriptResponse 脚本列表响应
type ListScriptResponse struct {
	Data  []ScriptResponse `json:"data"`
	Total int64            `json:"total"`
}
