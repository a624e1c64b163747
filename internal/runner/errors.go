package runner

import (
	"errors"
	"fmt"
	"time"
)

// ErrExecutionNotFound 任务执行记录不存在，不重试
var ErrExecutionNotFound = errors.New("task execution not found")

// ScriptFileNotFoundError 脚本文件不存在，重试无意义
type ScriptFileNotFoundError struct {
	Path string
}

func (e *ScriptFileNotFoundError) Error() string {
	return fmt.Sprintf("脚本文件不存在: %s", e.Path)
}

// UnsupportedScriptTypeError 扩展名不在支持范围内
type UnsupportedScriptTypeError struct {
	Ext string
}

func (e *UnsupportedScriptTypeError) Error() string {
	return fmt.Sprintf("不支持的脚本类型: %s", e.Ext)
}

// ScriptExitError 子进程非零退出，stderr/stdout 原样带回便于排查
type ScriptExitError struct {
	Code   int
	Stdout string
	Stderr string
}

func (e *ScriptExitError) Error() string {
	return fmt.Sprintf("脚本执行失败 (返回码: %d)\nSTDERR: %s\nSTDOUT: %s", e.Code, e.Stderr, e.Stdout)
}

// ExecutionTimeoutError 子进程超过硬超时被终止
type ExecutionTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *ExecutionTimeoutError) Error() string {
	return fmt.Sprintf("脚本执行超时 (超过%d秒): %s", int(e.Timeout.Seconds()), e.Path)
}
