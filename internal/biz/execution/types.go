package execution

import (
	"time"

	"github.com/samber/mo"
)

// ExecutionStatus 任务执行状态
// 状态机: PENDING -> STARTED -> SUCCESS/FAILURE
// REVOKED 由取消接口从 PENDING/STARTED 进入，RETRY 是队列重投递前的过渡态
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "PENDING"
	ExecutionStatusStarted ExecutionStatus = "STARTED"
	ExecutionStatusRetry   ExecutionStatus = "RETRY"
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"
	ExecutionStatusFailure ExecutionStatus = "FAILURE"
	ExecutionStatusRevoked ExecutionStatus = "REVOKED"
)

// IsTerminal 终态不允许再迁移
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusSuccess, ExecutionStatusFailure, ExecutionStatusRevoked:
		return true
	}
	return false
}

func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusStarted, ExecutionStatusRetry,
		ExecutionStatusSuccess, ExecutionStatusFailure, ExecutionStatusRevoked:
		return true
	}
	return false
}

type ExecutionFilter struct {
	Status        mo.Option[ExecutionStatus]
	ScriptName    mo.Option[string]
	TaskID        mo.Option[string]
	CreatedAfter  mo.Option[time.Time]
	CreatedBefore mo.Option[time.Time]

	Limit  int
	Offset int
}
