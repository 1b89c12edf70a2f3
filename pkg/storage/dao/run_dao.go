package dao

import (
	"database/sql"
	"time"
)

// RunDAO 运行记录数据库映射（对外导出）
type RunDAO struct {
	ID              string         `db:"id"`
	PlanName        string         `db:"plan_name"`
	Status          string         `db:"status"`
	TotalTasks      int            `db:"total_tasks"`
	Successful      int            `db:"successful"`
	Failed          int            `db:"failed"`
	Skipped         int            `db:"skipped"`
	TotalWallTimeMs int64          `db:"total_wall_time_ms"`
	ParallelSavedMs int64          `db:"parallel_saved_ms"`
	ErrorMessage    sql.NullString `db:"error_msg"`
	StartTime       time.Time      `db:"start_time"`
	EndTime         sql.NullTime   `db:"end_time"`
}

// TaskRunDAO 任务记录数据库映射（对外导出）
type TaskRunDAO struct {
	RunID      string         `db:"run_id"`
	TaskID     string         `db:"task_id"`
	Name       string         `db:"name"`
	Wave       int            `db:"wave"`
	Status     string         `db:"status"`
	Error      sql.NullString `db:"error_msg"`
	DurationMs int64          `db:"duration_ms"`
}
