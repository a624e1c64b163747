package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/validators/runner/internal/biz/execution"
	"github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/pkg/config"
	"go.uber.org/zap"
)

// ScriptExecutorBase 脚本执行模板：监控 -> 标记开始 -> 执行 -> 标记终态
// Execute 是脚本错误的唯一边界，脚本层的失败一律转成 FAILURE 记录加错误结果，
// 只有基础设施错误（库表不可写等）通过 error 返回，交给队列重试
type ScriptExecutorBase struct {
	manager    *TaskExecutionManager
	monitor    *ResourceMonitor
	log        *zap.Logger
	scriptName string
}

func (b *ScriptExecutorBase) Execute(ctx context.Context, fn func(context.Context) (map[string]any, error)) (*ScriptExecutionResult, error) {
	b.monitor.Start()

	if err := b.manager.MarkStarted(ctx); err != nil {
		if errors.Is(err, execution.ErrInvalidTransition) {
			// 取消接口抢先写了终态，放弃执行
			b.log.Warn("execution already terminal before start, skipping",
				zap.Uint64("execution_id", b.manager.Execution().ID))
			return &ScriptExecutionResult{Status: StatusCancelled, ScriptName: b.scriptName}, nil
		}
		return nil, err
	}

	result, fnErr := fn(ctx)

	// 失败路径也要拿到真实的耗时和内存
	executionTime, memoryUsage := b.monitor.Stop()

	// 任务被取消后 ctx 已死，落终态的写入要剥离取消信号
	writeCtx := context.WithoutCancel(ctx)

	if fnErr == nil {
		if err := b.manager.MarkSuccess(writeCtx, result, executionTime, memoryUsage); err != nil {
			if !errors.Is(err, execution.ErrInvalidTransition) {
				return nil, err
			}
			b.log.Warn("success write lost to concurrent terminal transition",
				zap.Uint64("execution_id", b.manager.Execution().ID))
		}
		return &ScriptExecutionResult{
			Status:        StatusSuccess,
			Result:        result,
			ExecutionTime: executionTime,
			MemoryUsage:   memoryUsage,
			ScriptName:    b.scriptName,
		}, nil
	}

	errorMessage := fnErr.Error()
	b.log.Error("script execution failed",
		zap.Uint64("execution_id", b.manager.Execution().ID),
		zap.String("error", errorMessage))

	status := StatusError
	if errors.Is(fnErr, context.Canceled) {
		status = StatusCancelled
	}

	if err := b.manager.MarkFailure(writeCtx, errorMessage); err != nil {
		if !errors.Is(err, execution.ErrInvalidTransition) {
			return nil, err
		}
		b.log.Warn("failure write lost to concurrent terminal transition",
			zap.Uint64("execution_id", b.manager.Execution().ID))
	}

	return &ScriptExecutionResult{
		Status:        status,
		Error:         errorMessage,
		ExecutionTime: executionTime,
		MemoryUsage:   memoryUsage,
		ScriptName:    b.scriptName,
		Metadata:      map[string]any{"error_type": fmt.Sprintf("%T", fnErr)},
	}, nil
}

// UnifiedScriptExecutor 统一脚本执行器
// 子进程隔离执行，参数通过环境变量传递，stdout 按 JSON 解析、非 JSON 降级为文本
type UnifiedScriptExecutor struct {
	ScriptExecutorBase

	cfg         config.RunnerConfig
	script      script.Descriptor
	parameters  map[string]any
	pageContext string
}

func NewUnifiedScriptExecutor(
	manager *TaskExecutionManager,
	cfg config.RunnerConfig,
	descriptor script.Descriptor,
	parameters map[string]any,
	pageContext string,
	logger *zap.Logger,
) *UnifiedScriptExecutor {
	return &UnifiedScriptExecutor{
		ScriptExecutorBase: ScriptExecutorBase{
			manager:    manager,
			monitor:    NewResourceMonitor(logger),
			log:        logger,
			scriptName: descriptor.Name,
		},
		cfg:         cfg,
		script:      descriptor,
		parameters:  parameters,
		pageContext: pageContext,
	}
}

// Run 统一执行入口
func (e *UnifiedScriptExecutor) Run(ctx context.Context) (*ScriptExecutionResult, error) {
	return e.Execute(ctx, e.executeScript)
}

func (e *UnifiedScriptExecutor) executeScript(ctx context.Context) (map[string]any, error) {
	if err := e.script.Validate(); err != nil {
		return nil, err
	}
	e.log.Info("executing script",
		zap.String("script", e.script.Name),
		zap.String("path", e.script.Path),
		zap.String("page_context", e.pageContext))
	return e.runScript(ctx)
}

func (e *UnifiedScriptExecutor) runScript(ctx context.Context) (map[string]any, error) {
	path := e.script.Path
	if _, err := os.Stat(path); err != nil {
		return nil, &ScriptFileNotFoundError{Path: path}
	}
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve script path: %w", err)
		}
		path = abs
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return e.runPythonFile(ctx, path)
	default:
		return nil, &UnsupportedScriptTypeError{Ext: filepath.Ext(path)}
	}
}

func (e *UnifiedScriptExecutor) runPythonFile(ctx context.Context, path string) (map[string]any, error) {
	params := []byte("{}")
	if e.parameters != nil {
		var err error
		if params, err = json.Marshal(e.parameters); err != nil {
			return nil, fmt.Errorf("serialize script parameters: %w", err)
		}
	}

	env := append(os.Environ(),
		"SCRIPT_PARAMETERS="+string(params),
		"PAGE_CONTEXT="+e.pageContext,
		"SCRIPT_NAME="+e.script.Name,
		"EXECUTION_ID="+strconv.FormatFloat(float64(time.Now().UnixMicro())/1e6, 'f', 6, 64),
	)

	execCtx, cancel := context.WithTimeout(ctx, e.cfg.ExecTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, e.cfg.PythonBin, path)
	cmd.Dir = filepath.Dir(path)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// 独立进程组，超时/取消时对整组发 SIGTERM，KillDelay 之后 runtime 补 SIGKILL
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = e.cfg.KillDelay

	e.log.Info("spawning python script",
		zap.String("python", e.cfg.PythonBin),
		zap.String("path", path),
		zap.Duration("timeout", e.cfg.ExecTimeout))

	runErr := cmd.Run()

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return nil, &ExecutionTimeoutError{Path: path, Timeout: e.cfg.ExecTimeout}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, fmt.Errorf("脚本执行被取消: %s: %w", path, context.Canceled)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &ScriptExitError{
				Code:   exitErr.ExitCode(),
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}
		}
		return nil, fmt.Errorf("执行脚本时发生异常: %w", runErr)
	}

	e.log.Info("script exited cleanly", zap.String("script", e.script.Name))
	return e.parseOutput(stdout.String(), stderr.String()), nil
}

// parseOutput stdout 优先按 JSON 对象解析，解析失败不是错误而是降级：
// 包成 {type: text, content, stderr, message}，容忍打印纯文本的脚本
func (e *UnifiedScriptExecutor) parseOutput(stdout, stderr string) map[string]any {
	var output map[string]any
	if strings.TrimSpace(stdout) == "" {
		output = map[string]any{}
	} else if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		e.log.Warn("script output is not a JSON object, wrapping as text",
			zap.String("script", e.script.Name),
			zap.Error(err))
		output = map[string]any{
			"type":    "text",
			"content": stdout,
			"stderr":  stderr,
			"message": "脚本执行完成，输出为文本格式",
		}
	}
	if output == nil {
		output = map[string]any{}
	}

	// 调用方可以依赖这三个键一定存在
	if _, ok := output["script_name"]; !ok {
		output["script_name"] = e.script.Name
	}
	if _, ok := output["execution_time"]; !ok {
		output["execution_time"] = time.Now().Format(time.RFC3339)
	}
	if _, ok := output["status"]; !ok {
		output["status"] = StatusSuccess
	}
	return output
}
