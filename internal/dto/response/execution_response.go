package response

import (
	"time"
)

// ExecuteScriptResponse 脚本执行提交响应
type ExecuteScriptResponse struct {
	Success     bool   `json:"success"`
	TaskID      string `json:"task_id"`
	ExecutionID uint64 `json:"execution_id"`
	ScriptName  string `json:"script_name"`
	Message     string `json:"message"`
}

// TaskExecutionResponse 任务执行记录响应
type TaskExecutionResponse struct {
	ID            uint64         `json:"id"`
	TaskID        string         `json:"task_id"`
	ScriptID      uint64         `json:"script_id"`
	ScriptName    string         `json:"script_name"`
	TriggeredBy   string         `json:"triggered_by"`
	Status        string         `json:"status"`
	Parameters    map[string]any `json:"parameters"`
	Result        map[string]any `json:"result"`
	ErrorMessage  string         `json:"error_message"`
	ExecutionTime *float64       `json:"execution_time"`
	MemoryUsage   *float64       `json:"memory_usage"`
	CreatedAt     time.Time      `json:"created_at"`
	StartedAt     *time.Time     `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at"`

	// Ready 终态即 true，Success 仅 SUCCESS 为 true
	Ready   bool `json:"ready"`
	Success bool `json:"success"`

	// QueueState 队列侧实时状态（pending/active/retry/archived），查不到时为空
	QueueState string `json:"queue_state,omitempty"`
}

// ListExecutionResponse 执行记录列表响应
type ListExecutionResponse struct {
	Data       []TaskExecutionResponse `json:"data"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
}

// CancelExecutionResponse 取消任务响应
type CancelExecutionResponse struct {
	Success     bool   `json:"success"`
	ExecutionID uint64 `json:"execution_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// ExecutionStatsResponse 执行统计响应
type ExecutionStatsResponse struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
	Running int64 `json:"running"`
	Pending int64 `json:"pending"`
	Revoked int64 `json:"revoked"`
}
