package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/pkg/config"
)

const TypeExecuteScript = "script:execute"

// TempTaskIDPrefix 占位任务ID前缀，入队成功后被真实ID覆盖。
// 带这个前缀的ID在队列里永远查不到
const TempTaskIDPrefix = "temp_"

// ScriptInfo 队列消息里的脚本描述，和领域 Descriptor 解耦，字段就是线上格式
type ScriptInfo struct {
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s ScriptInfo) Descriptor() script.Descriptor {
	return script.Descriptor{ID: s.ID, Name: s.Name, Path: s.Path}
}

// ExecutePayload script:execute 任务的消息体
type ExecutePayload struct {
	ExecutionID uint64         `json:"execution_id"`
	Script      ScriptInfo     `json:"script_info"`
	Parameters  map[string]any `json:"parameters"`
	TriggeredBy string         `json:"triggered_by"`
	PageContext string         `json:"page_context"`
}

// NewExecuteTask 组装执行任务，重试与硬超时挂在任务本身，入队方只补 TaskID
func NewExecuteTask(p ExecutePayload, cfg config.QueueConfig) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExecuteScript, payload,
		asynq.MaxRetry(cfg.MaxRetry),
		asynq.Timeout(cfg.HardTimeout),
		asynq.Queue(cfg.Name),
	), nil
}
