package runner

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ResourceMonitor 统计一次执行的墙钟耗时和本进程 RSS 增量
// 监控自身出错绝不能影响脚本执行，所有采样错误只记日志
type ResourceMonitor struct {
	log *zap.Logger

	startTime   time.Time
	startMemory float64
	proc        *process.Process
}

func NewResourceMonitor(log *zap.Logger) *ResourceMonitor {
	return &ResourceMonitor{log: log}
}

// Start 记录起点，重复调用会覆盖上一次的起点
func (m *ResourceMonitor) Start() {
	m.startTime = time.Now()
	m.startMemory = 0
	m.proc = nil

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.log.Warn("resource monitor: failed to attach to process", zap.Error(err))
		return
	}
	m.proc = proc

	if mem, err := proc.MemoryInfo(); err != nil {
		m.log.Warn("resource monitor: failed to read memory info", zap.Error(err))
	} else {
		m.startMemory = float64(mem.RSS) / 1024 / 1024
	}
	m.log.Debug("resource monitoring started", zap.Float64("start_memory_mb", m.startMemory))
}

// Stop 返回 (耗时秒, 内存增量MB)，未 Start 过返回 (0, 0)
// 内存增量可能为负（系统回收了页），不做钳制
func (m *ResourceMonitor) Stop() (float64, float64) {
	if m.startTime.IsZero() {
		m.log.Warn("resource monitoring was not started")
		return 0, 0
	}

	executionTime := time.Since(m.startTime).Seconds()

	var memoryUsage float64
	if m.proc != nil {
		if mem, err := m.proc.MemoryInfo(); err != nil {
			m.log.Warn("resource monitor: failed to read memory info", zap.Error(err))
		} else {
			memoryUsage = float64(mem.RSS)/1024/1024 - m.startMemory
		}
	}

	m.log.Debug("resource monitoring stopped",
		zap.Float64("execution_time", executionTime),
		zap.Float64("memory_usage_mb", memoryUsage))
	return executionTime, memoryUsage
}
