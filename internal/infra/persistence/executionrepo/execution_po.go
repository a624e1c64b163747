package executionrepo

import (
	"time"

	domain "github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

type TaskExecutionPo struct {
	commonrepo.Mode
	TaskID        string                 `gorm:"column:task_id;size:191;not null;uniqueIndex"`
	ScriptID      uint64                 `gorm:"column:script_id;not null;index"`
	ScriptName    string                 `gorm:"column:script_name;size:191;not null;index:idx_script_status"`
	TriggeredBy   string                 `gorm:"column:triggered_by;size:191"`
	PageContext   string                 `gorm:"column:page_context;size:191"`
	Parameters    datatypes.JSONMap      `gorm:"column:parameters;type:json"`
	Status        domain.ExecutionStatus `gorm:"column:status;size:50;not null;index:idx_script_status;index"`
	Result        datatypes.JSONMap      `gorm:"column:result;type:json"`
	ErrorMessage  string                 `gorm:"column:error_message;type:text"`
	ExecutionTime *float64               `gorm:"column:execution_time"`
	MemoryUsage   *float64               `gorm:"column:memory_usage"`
	StartedAt     *time.Time             `gorm:"column:started_at"`
	CompletedAt   *time.Time             `gorm:"column:completed_at"`
}

func (TaskExecutionPo) TableName() string {
	return "task_executions"
}
