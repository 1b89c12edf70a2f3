package task

import "time"

// 任务终态常量（对外导出）
const (
	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// SkippedMessage 跳过任务的固定诊断文案（对外导出）
const SkippedMessage = "依赖任务未成功完成，跳过执行"

// Descriptor 任务描述符（对外导出）
// 引擎调度的最小单元：唯一ID、前置任务ID列表、以及引擎不关心内容的载荷
// 载荷类型由调用方决定，引擎只负责原样传递给执行函数
type Descriptor[P any] struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Payload      P        `json:"payload,omitempty"`
}

// DisplayName 获取展示名称（对外导出）
// 未设置Name时回退到ID
func (d *Descriptor[P]) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// ExecutionResult 单个任务的执行结果（对外导出）
type ExecutionResult struct {
	TaskID   string        `json:"task_id"`
	Success  bool          `json:"success"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Output   interface{}   `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

// State 返回结果对应的终态（对外导出）
func (r *ExecutionResult) State() string {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Success:
		return StatusSuccess
	default:
		return StatusFailed
	}
}
