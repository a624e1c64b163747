package runner

// 执行结果状态，与 TaskExecution 的状态机无关，仅描述单次执行的结果
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusCancelled = "cancelled"
	StatusSkipped   = "skipped"
)

// ScriptExecutionResult 单次脚本执行的标准化结果
// 只在进程内和队列边界流转，不落库；TaskExecutionManager 负责把字段摘到记录上
type ScriptExecutionResult struct {
	Status        string         `json:"status"`
	Result        map[string]any `json:"result"`
	Error         string         `json:"error"`
	ExecutionTime float64        `json:"execution_time"`
	MemoryUsage   float64        `json:"memory_usage"`
	ScriptName    string         `json:"script_name"`
	Metadata      map[string]any `json:"metadata"`
}

func (r *ScriptExecutionResult) ToMap() map[string]any {
	var result any
	if r.Result != nil {
		result = r.Result
	}
	var errMsg any
	if r.Error != "" {
		errMsg = r.Error
	}
	metadata := r.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"status":         r.Status,
		"result":         result,
		"error":          errMsg,
		"execution_time": r.ExecutionTime,
		"memory_usage":   r.MemoryUsage,
		"script_name":    r.ScriptName,
		"metadata":       metadata,
	}
}

func (r *ScriptExecutionResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

func (r *ScriptExecutionResult) IsError() bool {
	return r.Status == StatusError
}
