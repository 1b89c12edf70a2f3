package engine

import (
	"time"

	"github.com/stevelan1995/wave-engine/pkg/core/dag"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

// RunStats 一次运行的统计数据（对外导出）
type RunStats struct {
	TotalTasks        int           `json:"total_tasks"`         // 任务总数
	Successful        int           `json:"successful"`          // 成功数
	Failed            int           `json:"failed"`              // 失败数
	Skipped           int           `json:"skipped"`             // 跳过数
	WaveCount         int           `json:"wave_count"`          // 波次数
	TotalWallTime     time.Duration `json:"total_wall_time"`     // 各波次墙钟时间之和
	ParallelTimeSaved time.Duration `json:"parallel_time_saved"` // 相比串行执行节省的时间，永不为负
}

// TaskError 单个任务的诊断条目（对外导出）
type TaskError struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

// Report 一次运行的完整结果（对外导出）
// 任务级失败不会体现为Execute的error返回值，全部收敛在Report中
type Report struct {
	RunID          string                           `json:"run_id"`
	Results        map[string]*task.ExecutionResult `json:"results"`         // 任务ID -> 执行结果
	CompletedTasks []string                         `json:"completed_tasks"` // 成功任务ID，按调度顺序
	FailedTasks    []string                         `json:"failed_tasks"`    // 失败任务ID，按调度顺序
	SkippedTasks   []string                         `json:"skipped_tasks"`   // 跳过任务ID，按调度顺序
	Errors         []TaskError                      `json:"errors"`          // 失败与跳过的诊断信息
	Waves          dag.Waves                        `json:"waves"`           // 波次调度结果
	Stats          *RunStats                        `json:"stats"`
}

// TaskStatusEvent 任务状态变更事件（对外导出）
type TaskStatusEvent struct {
	RunID     string        `json:"run_id"`
	TaskID    string        `json:"task_id"`
	TaskName  string        `json:"task_name"`
	Wave      int           `json:"wave"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// StatusSink 任务状态事件回调（对外导出）
// 由调用方注入，引擎在每个任务结束时同步调用；回调内不应做耗时操作
type StatusSink func(event *TaskStatusEvent)

// Options 引擎配置选项（对外导出）
type Options struct {
	MaxWorkers int        // 单波次内最大并发数，<=0时使用默认值
	StatusSink StatusSink // 可选的状态事件回调
}
