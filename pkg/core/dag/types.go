package dag

import (
	"fmt"
	"strings"
)

// DuplicateTaskError 重复任务ID错误（对外导出）
type DuplicateTaskError struct {
	TaskID string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("任务ID重复: %s", e.TaskID)
}

// UnknownDependencyError 未知依赖错误（对外导出）
// 任务声明了图中不存在的前置任务
type UnknownDependencyError struct {
	TaskID       string
	DependencyID string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("任务 %s 依赖了不存在的任务: %s", e.TaskID, e.DependencyID)
}

// CycleError 循环依赖错误（对外导出）
// Path为检测到的循环路径，首尾为同一节点
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "检测到循环依赖"
	}
	return fmt.Sprintf("检测到循环依赖: %s", strings.Join(e.Path, " -> "))
}

// Waves 波次调度结果（对外导出）
// 每一波内的任务相互独立，可以并行执行；后一波必须等前一波全部结束
type Waves [][]string
