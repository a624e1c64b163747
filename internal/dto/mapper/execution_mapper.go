package mapper

import (
	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/dto/response"
)

// ExecutionMapper 执行记录映射器
type ExecutionMapper struct{}

// NewExecutionMapper 创建执行记录映射器
func NewExecutionMapper() *ExecutionMapper {
	return &ExecutionMapper{}
}

// ToExecutionResponse 将执行记录实体转换为响应DTO
func (m *ExecutionMapper) ToExecutionResponse(e *execution.TaskExecution) response.TaskExecutionResponse {
	return response.TaskExecutionResponse{
		ID:            e.ID,
		TaskID:        e.TaskID,
		ScriptID:      e.ScriptID,
		ScriptName:    e.ScriptName,
		TriggeredBy:   e.TriggeredBy,
		Status:        string(e.Status),
		Parameters:    e.Parameters,
		Result:        e.Result,
		ErrorMessage:  e.ErrorMessage,
		ExecutionTime: e.ExecutionTime,
		MemoryUsage:   e.MemoryUsage,
		CreatedAt:     e.CreatedAt,
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
		Ready:         e.Status.IsTerminal(),
		Success:       e.Status == execution.ExecutionStatusSuccess,
	}
}

// ToExecutionListResponse 将执行记录实体列表转换为列表响应DTO
func (m *ExecutionMapper) ToExecutionListResponse(executions []*execution.TaskExecution, total int64, page, pageSize int) response.ListExecutionResponse {
	data := make([]response.TaskExecutionResponse, len(executions))
	for i, e := range executions {
		data[i] = m.ToExecutionResponse(e)
	}

	// 计算总页数
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return response.ListExecutionResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ToExecutionStatsResponse 将执行统计转换为响应DTO
func (m *ExecutionMapper) ToExecutionStatsResponse(stats *execution.ExecutionStats) response.ExecutionStatsResponse {
	return response.ExecutionStatsResponse{
		Total:   stats.Total,
		Success: stats.Success,
		Failed:  stats.Failed,
		Running: stats.Running,
		Pending: stats.Pending,
		Revoked: stats.Revoked,
	}
}
