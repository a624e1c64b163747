package executionrepo

import (
	domain "github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

func (po *TaskExecutionPo) ToDomain() *domain.TaskExecution {
	return &domain.TaskExecution{
		ID:            po.ID,
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
		TaskID:        po.TaskID,
		ScriptID:      po.ScriptID,
		ScriptName:    po.ScriptName,
		TriggeredBy:   po.TriggeredBy,
		PageContext:   po.PageContext,
		Parameters:    po.Parameters,
		Status:        po.Status,
		Result:        po.Result,
		ErrorMessage:  po.ErrorMessage,
		ExecutionTime: po.ExecutionTime,
		MemoryUsage:   po.MemoryUsage,
		StartedAt:     po.StartedAt,
		CompletedAt:   po.CompletedAt,
	}
}

func (po *TaskExecutionPo) FromDomain(in *domain.TaskExecution) *TaskExecutionPo {
	return &TaskExecutionPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		TaskID:        in.TaskID,
		ScriptID:      in.ScriptID,
		ScriptName:    in.ScriptName,
		TriggeredBy:   in.TriggeredBy,
		PageContext:   in.PageContext,
		Parameters:    datatypes.JSONMap(in.Parameters),
		Status:        in.Status,
		Result:        datatypes.JSONMap(in.Result),
		ErrorMessage:  in.ErrorMessage,
		ExecutionTime: in.ExecutionTime,
		MemoryUsage:   in.MemoryUsage,
		StartedAt:     in.StartedAt,
		CompletedAt:   in.CompletedAt,
	}
}

func patchToMap(input *domain.TaskExecutionPatch) map[string]any {
	var values = make(map[string]any)
	if input.TaskID != nil {
		values["task_id"] = *input.TaskID
	}
	if input.Status != nil {
		values["status"] = *input.Status
	}
	if input.Result != nil {
		values["result"] = datatypes.JSONMap(*input.Result)
	}
	if input.ErrorMessage != nil {
		values["error_message"] = *input.ErrorMessage
	}
	if input.ExecutionTime != nil {
		values["execution_time"] = *input.ExecutionTime
	}
	if input.MemoryUsage != nil {
		values["memory_usage"] = *input.MemoryUsage
	}
	if input.StartedAt != nil {
		values["started_at"] = *input.StartedAt
	}
	if input.CompletedAt != nil {
		values["completed_at"] = *input.CompletedAt
	}
	return values
}
