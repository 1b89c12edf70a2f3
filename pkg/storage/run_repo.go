package storage

import (
	"context"
	"time"
)

// RunRepository 运行历史存储接口（对外导出）
// 引擎本体不依赖存储；运行结束后由Service将执行报告落库（审计/历史）
type RunRepository interface {
	// SaveRun 保存一次运行记录（含所有任务记录）
	SaveRun(ctx context.Context, run *RunRecord) error
	// GetRun 根据ID查询运行记录
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	// ListRuns 查询运行记录列表（按开始时间倒序）
	ListRuns(ctx context.Context, limit, offset int) ([]*RunRecord, error)
	// GetTaskRecords 查询某次运行的所有任务记录
	GetTaskRecords(ctx context.Context, runID string) ([]*TaskRunRecord, error)
}

// RunRecord 一次运行的记录（对外导出）
type RunRecord struct {
	ID                string           // 运行ID（UUID）
	PlanName          string           // 计划名称
	Status            string           // 状态（SUCCESS/FAILED）
	TotalTasks        int              // 任务总数
	Successful        int              // 成功数
	Failed            int              // 失败数
	Skipped           int              // 跳过数
	TotalWallTime     time.Duration    // 总耗时（各波次墙钟时间之和）
	ParallelTimeSaved time.Duration    // 并发节省的时间
	ErrorMessage      string           // 错误信息（结构性错误时）
	StartTime         time.Time        // 开始时间
	EndTime           *time.Time       // 结束时间
	Tasks             []*TaskRunRecord // 任务记录（SaveRun时一并写入）
}

// TaskRunRecord 单个任务的运行记录（对外导出）
type TaskRunRecord struct {
	RunID    string        // 运行ID
	TaskID   string        // 任务ID
	Name     string        // 任务名称
	Wave     int           // 所在波次
	Status   string        // 终态（SUCCESS/FAILED/SKIPPED）
	Error    string        // 错误信息
	Duration time.Duration // 执行耗时
}
