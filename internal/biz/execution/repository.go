package execution

import (
	"context"
	"time"

	"github.com/validators/runner/internal/infra/persistence/commonrepo"
)

type Repo interface {
	commonrepo.Transaction
	Create(ctx context.Context, execution *TaskExecution) error
	GetByID(ctx context.Context, id uint64) (*TaskExecution, error)
	GetByTaskID(ctx context.Context, taskID string) (*TaskExecution, error)
	Update(ctx context.Context, id uint64, patch *TaskExecutionPatch) error

	Count(ctx context.Context, filter *ExecutionFilter) (int64, error)
	List(ctx context.Context, filter *ExecutionFilter) ([]*TaskExecution, int64, error)
	Stats(ctx context.Context, filter *ExecutionFilter) (*ExecutionStats, error)

	// FindStale 查找超过 olderThan 仍停留在给定状态的记录，对账任务用
	FindStale(ctx context.Context, statuses []ExecutionStatus, olderThan time.Time) ([]*TaskExecution, error)
}

// ExecutionStats 按状态聚合的执行统计，Running 含 STARTED 与 RETRY
type ExecutionStats struct {
	Total   int64
	Success int64
	Failed  int64
	Running int64
	Pending int64
	Revoked int64
}
