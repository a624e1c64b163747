package execution

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition 非法状态迁移，终态记录不允许再写
var ErrInvalidTransition = errors.New("invalid status transition")

type TaskExecution struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	// TaskID 队列任务ID，入队前是 temp_ 前缀的占位符，入队后回填
	TaskID      string
	ScriptID    uint64
	ScriptName  string
	TriggeredBy string
	PageContext string
	Parameters  map[string]any

	Status       ExecutionStatus
	Result       map[string]any
	ErrorMessage string

	// ExecutionTime 秒、MemoryUsage MB，仅在终态前为 nil
	ExecutionTime *float64
	MemoryUsage   *float64

	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Start PENDING/RETRY -> STARTED
// 队列重投递时记录可能停留在 STARTED，允许重复进入
func (e *TaskExecution) Start(now time.Time) (*TaskExecutionPatch, error) {
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot start execution in status %s", ErrInvalidTransition, e.Status)
	}
	e.Status = ExecutionStatusStarted
	e.StartedAt = &now
	return NewTaskExecutionPatch().WithStatus(e.Status).WithStartedAt(now), nil
}

// Succeed STARTED -> SUCCESS，result 与 error_message 互斥
func (e *TaskExecution) Succeed(result map[string]any, executionTime, memoryUsage float64, now time.Time) (*TaskExecutionPatch, error) {
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: execution already terminal: %s", ErrInvalidTransition, e.Status)
	}
	e.Status = ExecutionStatusSuccess
	e.Result = result
	e.ErrorMessage = ""
	e.ExecutionTime = &executionTime
	e.MemoryUsage = &memoryUsage
	e.CompletedAt = &now
	return NewTaskExecutionPatch().
		WithStatus(e.Status).
		WithResult(result).
		WithExecutionTime(executionTime).
		WithMemoryUsage(memoryUsage).
		WithCompletedAt(now), nil
}

// Fail 任意非终态 -> FAILURE
func (e *TaskExecution) Fail(errorMessage string, now time.Time) (*TaskExecutionPatch, error) {
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: execution already terminal: %s", ErrInvalidTransition, e.Status)
	}
	e.Status = ExecutionStatusFailure
	e.Result = nil
	e.ErrorMessage = errorMessage
	e.CompletedAt = &now
	return NewTaskExecutionPatch().
		WithStatus(e.Status).
		WithErrorMessage(errorMessage).
		WithCompletedAt(now), nil
}

// Revoke PENDING/STARTED -> REVOKED，取消接口专用
func (e *TaskExecution) Revoke(now time.Time) (*TaskExecutionPatch, error) {
	if e.Status != ExecutionStatusPending && e.Status != ExecutionStatusStarted {
		return nil, fmt.Errorf("%w: cannot revoke execution in status %s", ErrInvalidTransition, e.Status)
	}
	e.Status = ExecutionStatusRevoked
	e.CompletedAt = &now
	return NewTaskExecutionPatch().WithStatus(e.Status).WithCompletedAt(now), nil
}

// MarkRetry 队列重试投递前的过渡态
func (e *TaskExecution) MarkRetry() (*TaskExecutionPatch, error) {
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: execution already terminal: %s", ErrInvalidTransition, e.Status)
	}
	e.Status = ExecutionStatusRetry
	return NewTaskExecutionPatch().WithStatus(e.Status), nil
}

type TaskExecutionPatch struct {
	TaskID        *string
	Status        *ExecutionStatus
	Result        *map[string]any
	ErrorMessage  *string
	ExecutionTime *float64
	MemoryUsage   *float64
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

func NewTaskExecutionPatch() *TaskExecutionPatch {
	return &TaskExecutionPatch{}
}

func (p *TaskExecutionPatch) WithTaskID(taskID string) *TaskExecutionPatch {
	p.TaskID = &taskID
	return p
}

func (p *TaskExecutionPatch) WithStatus(status ExecutionStatus) *TaskExecutionPatch {
	p.Status = &status
	return p
}

func (p *TaskExecutionPatch) WithResult(result map[string]any) *TaskExecutionPatch {
	p.Result = &result
	return p
}

func (p *TaskExecutionPatch) WithErrorMessage(errorMessage string) *TaskExecutionPatch {
	p.ErrorMessage = &errorMessage
	return p
}

func (p *TaskExecutionPatch) WithExecutionTime(executionTime float64) *TaskExecutionPatch {
	p.ExecutionTime = &executionTime
	return p
}

func (p *TaskExecutionPatch) WithMemoryUsage(memoryUsage float64) *TaskExecutionPatch {
	p.MemoryUsage = &memoryUsage
	return p
}

func (p *TaskExecutionPatch) WithStartedAt(startedAt time.Time) *TaskExecutionPatch {
	p.StartedAt = &startedAt
	return p
}

func (p *TaskExecutionPatch) WithCompletedAt(completedAt time.Time) *TaskExecutionPatch {
	p.CompletedAt = &completedAt
	return p
}
