package request

// CreateScriptRequest 注册脚本请求
type CreateScriptRequest struct {
	Name             string         `json:"name" binding:"required"`
	DisplayTitle     string         `json:"display_title"`
	Description      string         `json:"description"`
	ScriptPath       string         `json:"script_path" binding:"required"`
	ScriptType       string         `json:"script_type"`
	ParametersSchema map[string]any `json:"parameters_schema"`
	IsActive         *bool          `json:"is_active"`
}

// ListScriptRequest 获取脚本列表请求
type ListScriptRequest struct {
	IsActive   *bool  `form:"is_active"`
	ScriptType string `form:"script_type"`
}
