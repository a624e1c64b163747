package request

// ExecuteScriptRequest 执行脚本请求
// script_id / script_name+script_path / script_name 三种定位方式按优先级取一
type ExecuteScriptRequest struct {
	ScriptID    uint64         `json:"script_id"`
	ScriptName  string         `json:"script_name"`
	ScriptPath  string         `json:"script_path"`
	Parameters  map[string]any `json:"parameters"`
	PageContext string         `json:"page_context"`
	TriggeredBy string         `json:"triggered_by"`
}

// ListExecutionRequest 获取执行记录列表请求
type ListExecutionRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	TaskID     string `form:"task_id"`
	ScriptName string `form:"script_name"`
	Status     string `form:"status"`
	StartTime  string `form:"start_time"`
	EndTime    string `form:"end_time"`
}

// ExecutionStatsRequest 执行统计请求
type ExecutionStatsRequest struct {
	StartTime  string `form:"start_time"`
	EndTime    string `form:"end_time"`
	ScriptName string `form:"script_name"`
}
