package sqlrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevelan1995/wave-engine/pkg/storage"
	"github.com/stevelan1995/wave-engine/pkg/storage/sqlite"
)

func newTestRepo(t *testing.T) storage.RunRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRunRepo(db, sqlite.NewSQLiteDialect())
	require.NoError(t, err)
	return repo
}

func sampleRun(id string, start time.Time) *storage.RunRecord {
	end := start.Add(2 * time.Second)
	return &storage.RunRecord{
		ID:                id,
		PlanName:          "demo",
		Status:            "FAILED",
		TotalTasks:        3,
		Successful:        1,
		Failed:            1,
		Skipped:           1,
		TotalWallTime:     1500 * time.Millisecond,
		ParallelTimeSaved: 400 * time.Millisecond,
		ErrorMessage:      "任务 b: 模拟失败",
		StartTime:         start,
		EndTime:           &end,
		Tasks: []*storage.TaskRunRecord{
			{TaskID: "a", Name: "任务A", Wave: 0, Status: "SUCCESS", Duration: 800 * time.Millisecond},
			{TaskID: "b", Wave: 0, Status: "FAILED", Error: "模拟失败", Duration: 700 * time.Millisecond},
			{TaskID: "c", Wave: 1, Status: "SKIPPED", Error: "依赖任务未成功完成，跳过执行"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-1", start)))

	run, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, "demo", run.PlanName)
	assert.Equal(t, "FAILED", run.Status)
	assert.Equal(t, 3, run.TotalTasks)
	assert.Equal(t, 1500*time.Millisecond, run.TotalWallTime)
	assert.Equal(t, 400*time.Millisecond, run.ParallelTimeSaved)
	assert.Equal(t, "任务 b: 模拟失败", run.ErrorMessage)
	require.NotNil(t, run.EndTime)

	tasks, err := repo.GetTaskRecords(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	// 按波次排序
	assert.Equal(t, "a", tasks[0].TaskID)
	assert.Equal(t, 0, tasks[0].Wave)
	assert.Equal(t, "c", tasks[2].TaskID)
	assert.Equal(t, 1, tasks[2].Wave)
	assert.Equal(t, "SKIPPED", tasks[2].Status)
}

func TestSaveRun_Upsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Second)

	run := sampleRun("run-1", start)
	require.NoError(t, repo.SaveRun(ctx, run))

	// 重复保存同一次运行，应该覆盖而不是报错
	run.Status = "SUCCESS"
	run.Failed = 0
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", got.Status)

	tasks, err := repo.GetTaskRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestGetRun_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	run, err := repo.GetRun(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestListRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-old", base.Add(-time.Hour))))
	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-new", base)))

	runs, err := repo.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// 按开始时间倒序
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)

	// 分页
	runs, err = repo.ListRuns(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-old", runs[0].ID)

	// 空保存校验
	assert.Error(t, repo.SaveRun(ctx, nil))
}
