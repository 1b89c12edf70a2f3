package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stevelan1995/wave-engine/pkg/storage"
	"github.com/stevelan1995/wave-engine/pkg/storage/dao"
)

// 以SQLite风格为基准的DDL，各方言通过CreateTableSQL转换
const runSchema = `
CREATE TABLE IF NOT EXISTS run_record (
	id TEXT PRIMARY KEY,
	plan_name TEXT NOT NULL,
	status TEXT NOT NULL,
	total_tasks INTEGER DEFAULT 0,
	successful INTEGER DEFAULT 0,
	failed INTEGER DEFAULT 0,
	skipped INTEGER DEFAULT 0,
	total_wall_time_ms INTEGER DEFAULT 0,
	parallel_saved_ms INTEGER DEFAULT 0,
	error_msg TEXT,
	start_time DATETIME NOT NULL,
	end_time DATETIME
);
`

const taskRunSchema = `
CREATE TABLE IF NOT EXISTS task_run_record (
	run_id TEXT NOT NULL,
	task_id TEXT NOT NULL,
	name TEXT,
	wave INTEGER DEFAULT 0,
	status TEXT NOT NULL,
	error_msg TEXT,
	duration_ms INTEGER DEFAULT 0,
	PRIMARY KEY (run_id, task_id)
);
`

var runColumns = []string{
	"id", "plan_name", "status", "total_tasks", "successful", "failed", "skipped",
	"total_wall_time_ms", "parallel_saved_ms", "error_msg", "start_time", "end_time",
}

var taskRunColumns = []string{
	"run_id", "task_id", "name", "wave", "status", "error_msg", "duration_ms",
}

// runRepo 基于sqlx的运行历史存储实现（小写，不导出）
// SQL语法差异通过Dialect封装，同一实现支撑sqlite/mysql/postgres
type runRepo struct {
	db      *sqlx.DB
	dialect storage.Dialect
}

// NewRunRepo 创建运行历史存储实例（对外导出的工厂方法）
func NewRunRepo(db *sqlx.DB, dialect storage.Dialect) (storage.RunRepository, error) {
	repo := &runRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化运行历史表结构失败: %w", err)
	}
	return repo, nil
}

// initSchema 初始化数据库表结构（内部方法）
func (r *runRepo) initSchema() error {
	for _, schema := range []string{runSchema, taskRunSchema} {
		if _, err := r.db.Exec(r.dialect.CreateTableSQL(schema)); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun 保存一次运行记录（含所有任务记录）
func (r *runRepo) SaveRun(ctx context.Context, run *storage.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("运行记录不能为空")
	}

	runDAO := toRunDAO(run)

	query := r.dialect.UpsertSQL("run_record", runColumns, "id", runColumns[1:])
	if _, err := r.db.NamedExecContext(ctx, query, runDAO); err != nil {
		return fmt.Errorf("保存运行记录失败: %w", err)
	}

	taskQuery := r.dialect.UpsertSQL("task_run_record", taskRunColumns, "run_id, task_id", taskRunColumns[2:])
	for _, t := range run.Tasks {
		taskDAO := toTaskRunDAO(run.ID, t)
		if _, err := r.db.NamedExecContext(ctx, taskQuery, taskDAO); err != nil {
			return fmt.Errorf("保存任务记录失败: TaskID=%s, Error=%w", t.TaskID, err)
		}
	}

	return nil
}

// GetRun 根据ID查询运行记录
func (r *runRepo) GetRun(ctx context.Context, id string) (*storage.RunRecord, error) {
	var d dao.RunDAO
	query := r.db.Rebind(`
	SELECT id, plan_name, status, total_tasks, successful, failed, skipped,
	       total_wall_time_ms, parallel_saved_ms, error_msg, start_time, end_time
	FROM run_record WHERE id = ?
	`)
	err := r.db.GetContext(ctx, &d, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}

	return fromRunDAO(&d), nil
}

// ListRuns 查询运行记录列表（按开始时间倒序）
func (r *runRepo) ListRuns(ctx context.Context, limit, offset int) ([]*storage.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var daos []dao.RunDAO
	query := r.db.Rebind(`
	SELECT id, plan_name, status, total_tasks, successful, failed, skipped,
	       total_wall_time_ms, parallel_saved_ms, error_msg, start_time, end_time
	FROM run_record ORDER BY start_time DESC LIMIT ? OFFSET ?
	`)
	if err := r.db.SelectContext(ctx, &daos, query, limit, offset); err != nil {
		return nil, fmt.Errorf("查询运行记录列表失败: %w", err)
	}

	runs := make([]*storage.RunRecord, 0, len(daos))
	for i := range daos {
		runs = append(runs, fromRunDAO(&daos[i]))
	}
	return runs, nil
}

// GetTaskRecords 查询某次运行的所有任务记录
func (r *runRepo) GetTaskRecords(ctx context.Context, runID string) ([]*storage.TaskRunRecord, error) {
	var daos []dao.TaskRunDAO
	query := r.db.Rebind(`
	SELECT run_id, task_id, name, wave, status, error_msg, duration_ms
	FROM task_run_record WHERE run_id = ? ORDER BY wave, task_id
	`)
	if err := r.db.SelectContext(ctx, &daos, query, runID); err != nil {
		return nil, fmt.Errorf("查询任务记录失败: %w", err)
	}

	records := make([]*storage.TaskRunRecord, 0, len(daos))
	for i := range daos {
		records = append(records, fromTaskRunDAO(&daos[i]))
	}
	return records, nil
}

// toRunDAO 业务实体转DAO（内部方法）
func toRunDAO(run *storage.RunRecord) *dao.RunDAO {
	d := &dao.RunDAO{
		ID:              run.ID,
		PlanName:        run.PlanName,
		Status:          run.Status,
		TotalTasks:      run.TotalTasks,
		Successful:      run.Successful,
		Failed:          run.Failed,
		Skipped:         run.Skipped,
		TotalWallTimeMs: run.TotalWallTime.Milliseconds(),
		ParallelSavedMs: run.ParallelTimeSaved.Milliseconds(),
		StartTime:       run.StartTime,
	}
	if run.ErrorMessage != "" {
		d.ErrorMessage = sql.NullString{Valid: true, String: run.ErrorMessage}
	}
	if run.EndTime != nil {
		d.EndTime = sql.NullTime{Valid: true, Time: *run.EndTime}
	}
	return d
}

// fromRunDAO DAO转业务实体（内部方法）
func fromRunDAO(d *dao.RunDAO) *storage.RunRecord {
	run := &storage.RunRecord{
		ID:                d.ID,
		PlanName:          d.PlanName,
		Status:            d.Status,
		TotalTasks:        d.TotalTasks,
		Successful:        d.Successful,
		Failed:            d.Failed,
		Skipped:           d.Skipped,
		TotalWallTime:     time.Duration(d.TotalWallTimeMs) * time.Millisecond,
		ParallelTimeSaved: time.Duration(d.ParallelSavedMs) * time.Millisecond,
		StartTime:         d.StartTime,
	}
	if d.ErrorMessage.Valid {
		run.ErrorMessage = d.ErrorMessage.String
	}
	if d.EndTime.Valid {
		endTime := d.EndTime.Time
		run.EndTime = &endTime
	}
	return run
}

// toTaskRunDAO 业务实体转DAO（内部方法）
func toTaskRunDAO(runID string, t *storage.TaskRunRecord) *dao.TaskRunDAO {
	d := &dao.TaskRunDAO{
		RunID:      runID,
		TaskID:     t.TaskID,
		Name:       t.Name,
		Wave:       t.Wave,
		Status:     t.Status,
		DurationMs: t.Duration.Milliseconds(),
	}
	if t.Error != "" {
		d.Error = sql.NullString{Valid: true, String: t.Error}
	}
	return d
}

// fromTaskRunDAO DAO转业务实体（内部方法）
func fromTaskRunDAO(d *dao.TaskRunDAO) *storage.TaskRunRecord {
	t := &storage.TaskRunRecord{
		RunID:    d.RunID,
		TaskID:   d.TaskID,
		Name:     d.Name,
		Wave:     d.Wave,
		Status:   d.Status,
		Duration: time.Duration(d.DurationMs) * time.Millisecond,
	}
	if d.Error.Valid {
		t.Error = d.Error.String
	}
	return t
}
