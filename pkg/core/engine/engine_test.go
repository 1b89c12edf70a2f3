package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

func desc(id string, deps ...string) *task.Descriptor[task.Params] {
	return &task.Descriptor[task.Params]{ID: id, Dependencies: deps}
}

func newTestEngine(t *testing.T, maxWorkers int) *Engine[task.Params] {
	t.Helper()
	e, err := New[task.Params](Options{MaxWorkers: maxWorkers})
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}
	return e
}

func newRunCtx() *task.Context {
	return task.NewContext(context.Background(), "test-run", nil)
}

// recordingUOW 记录执行过的任务ID，可按任务ID注入行为
type recordingUOW struct {
	mu       sync.Mutex
	executed []string
	behavior map[string]func() (interface{}, error)
}

func newRecordingUOW() *recordingUOW {
	return &recordingUOW{behavior: make(map[string]func() (interface{}, error))}
}

func (u *recordingUOW) Execute(ctx *task.Context, d *task.Descriptor[task.Params]) (interface{}, error) {
	u.mu.Lock()
	u.executed = append(u.executed, d.ID)
	u.mu.Unlock()

	if fn, ok := u.behavior[d.ID]; ok {
		return fn()
	}
	return d.ID, nil
}

func (u *recordingUOW) executedIDs() map[string]bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	ids := make(map[string]bool, len(u.executed))
	for _, id := range u.executed {
		ids[id] = true
	}
	return ids
}

func TestExecute_WaveOrdering(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()

	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a"),
		desc("b"),
		desc("c", "a", "b"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	if len(report.Waves) != 2 {
		t.Fatalf("波次数量错误，期望: 2, 实际: %d", len(report.Waves))
	}
	if len(report.Waves[0]) != 2 || report.Waves[0][0] != "a" || report.Waves[0][1] != "b" {
		t.Errorf("第一波错误，期望: [a b], 实际: %v", report.Waves[0])
	}
	if len(report.Waves[1]) != 1 || report.Waves[1][0] != "c" {
		t.Errorf("第二波错误，期望: [c], 实际: %v", report.Waves[1])
	}
	if len(report.CompletedTasks) != 3 {
		t.Errorf("成功任务数错误，期望: 3, 实际: %d", len(report.CompletedTasks))
	}
	if report.Stats.Successful != 3 || report.Stats.Failed != 0 || report.Stats.Skipped != 0 {
		t.Errorf("统计错误: %+v", report.Stats)
	}
}

func TestExecute_FailurePropagation(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()
	uow.behavior["a"] = func() (interface{}, error) {
		return nil, fmt.Errorf("模拟失败")
	}

	// a失败 -> c跳过 -> d（依赖c）也跳过；b不受影响
	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a"),
		desc("b"),
		desc("c", "a"),
		desc("d", "c"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	executed := uow.executedIDs()
	if executed["c"] || executed["d"] {
		t.Fatal("被跳过的任务不应该被执行")
	}
	if !executed["b"] {
		t.Fatal("不受失败影响的任务应该被执行")
	}

	if len(report.FailedTasks) != 1 || report.FailedTasks[0] != "a" {
		t.Errorf("失败任务错误，期望: [a], 实际: %v", report.FailedTasks)
	}
	if len(report.SkippedTasks) != 2 {
		t.Fatalf("跳过任务数错误，期望: 2, 实际: %v", report.SkippedTasks)
	}

	// 跳过结果的诊断信息是固定文案
	cResult := report.Results["c"]
	if cResult == nil || !cResult.Skipped || cResult.Error != task.SkippedMessage {
		t.Errorf("跳过结果错误: %+v", cResult)
	}
	if cResult.State() != task.StatusSkipped {
		t.Errorf("跳过状态错误，期望: %s, 实际: %s", task.StatusSkipped, cResult.State())
	}

	// 失败与跳过都要进入Errors列表，条目带任务ID
	if len(report.Errors) != 3 {
		t.Fatalf("Errors数量错误，期望: 3, 实际: %v", report.Errors)
	}
	errOf := make(map[string]string, len(report.Errors))
	for _, te := range report.Errors {
		errOf[te.TaskID] = te.Error
	}
	if errOf["a"] != "模拟失败" {
		t.Errorf("失败条目错误: %+v", report.Errors)
	}
	if errOf["c"] != task.SkippedMessage || errOf["d"] != task.SkippedMessage {
		t.Errorf("跳过条目错误: %+v", report.Errors)
	}
}

func TestExecute_MixedDependencySkip(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()
	uow.behavior["a"] = func() (interface{}, error) {
		return nil, fmt.Errorf("模拟失败")
	}

	// c同时依赖失败的a和成功的d：c跳过，d正常完成
	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a"),
		desc("d"),
		desc("c", "a", "d"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	if uow.executedIDs()["c"] {
		t.Fatal("部分依赖失败的任务不应该被执行")
	}
	if len(report.CompletedTasks) != 1 || report.CompletedTasks[0] != "d" {
		t.Errorf("成功任务错误，期望: [d], 实际: %v", report.CompletedTasks)
	}
	if len(report.SkippedTasks) != 1 || report.SkippedTasks[0] != "c" {
		t.Errorf("跳过任务错误，期望: [c], 实际: %v", report.SkippedTasks)
	}
}

func TestExecute_CycleNeverRuns(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()

	_, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a", "b"),
		desc("b", "a"),
	}, uow)
	if err == nil {
		t.Fatal("循环依赖应该返回错误，但未返回")
	}
	if len(uow.executedIDs()) != 0 {
		t.Fatal("循环依赖时任何任务都不应该被执行")
	}
}

func TestExecute_UnknownDependency(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()

	_, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a", "ghost"),
	}, uow)
	if err == nil {
		t.Fatal("未知依赖应该返回错误，但未返回")
	}
	if len(uow.executedIDs()) != 0 {
		t.Fatal("构图失败时任何任务都不应该被执行")
	}
}

func TestExecute_ParallelTiming(t *testing.T) {
	const taskCount = 4
	const sleep = 100 * time.Millisecond

	e := newTestEngine(t, taskCount)
	uow := newRecordingUOW()
	tasks := make([]*task.Descriptor[task.Params], 0, taskCount)
	for i := 0; i < taskCount; i++ {
		id := fmt.Sprintf("t%d", i)
		tasks = append(tasks, desc(id))
		uow.behavior[id] = func() (interface{}, error) {
			time.Sleep(sleep)
			return nil, nil
		}
	}

	start := time.Now()
	report, err := e.Execute(newRunCtx(), tasks, uow)
	wall := time.Since(start)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	// 并行执行：墙钟时间应该接近单个任务耗时，而不是串行总和
	serial := time.Duration(taskCount) * sleep
	if wall >= serial {
		t.Errorf("并行执行耗时过长，墙钟=%v, 串行总和=%v", wall, serial)
	}

	// 并行节省时间应该接近 (k-1)*d
	if report.Stats.ParallelTimeSaved < 2*sleep {
		t.Errorf("并行节省时间过小: %v", report.Stats.ParallelTimeSaved)
	}
	if report.Stats.ParallelTimeSaved < 0 {
		t.Errorf("并行节省时间不能为负: %v", report.Stats.ParallelTimeSaved)
	}
	if report.Stats.TotalWallTime >= serial {
		t.Errorf("总墙钟时间错误，期望小于串行总和 %v, 实际: %v", serial, report.Stats.TotalWallTime)
	}
}

func TestExecute_SingleTaskWaveNoSaving(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()
	uow.behavior["a"] = func() (interface{}, error) {
		time.Sleep(20 * time.Millisecond)
		return nil, nil
	}

	// 链式依赖，每波只有一个任务，不存在并行节省
	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("a"),
		desc("b", "a"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	if report.Stats.ParallelTimeSaved != 0 {
		t.Errorf("单任务波次不应该有并行节省，实际: %v", report.Stats.ParallelTimeSaved)
	}
	if report.Stats.WaveCount != 2 {
		t.Errorf("波次数量错误，期望: 2, 实际: %d", report.Stats.WaveCount)
	}
}

func TestExecute_BoundedConcurrency(t *testing.T) {
	const maxWorkers = 2
	const taskCount = 6

	e := newTestEngine(t, maxWorkers)
	uow := newRecordingUOW()

	var current, peak int32
	tasks := make([]*task.Descriptor[task.Params], 0, taskCount)
	for i := 0; i < taskCount; i++ {
		id := fmt.Sprintf("t%d", i)
		tasks = append(tasks, desc(id))
		uow.behavior[id] = func() (interface{}, error) {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil, nil
		}
	}

	if _, err := e.Execute(newRunCtx(), tasks, uow); err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	if p := atomic.LoadInt32(&peak); p > maxWorkers {
		t.Errorf("并发数超过上限，期望: <=%d, 实际: %d", maxWorkers, p)
	}
}

func TestExecute_PanicRecovery(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()
	uow.behavior["boom"] = func() (interface{}, error) {
		panic("炸了")
	}

	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("boom"),
		desc("ok"),
	}, uow)
	if err != nil {
		t.Fatalf("panic应该被捕获，不应该导致执行失败: %v", err)
	}

	boomResult := report.Results["boom"]
	if boomResult == nil || boomResult.Success {
		t.Fatalf("panic的任务应该标记为失败: %+v", boomResult)
	}
	okResult := report.Results["ok"]
	if okResult == nil || !okResult.Success {
		t.Fatalf("同波次的其他任务不应受panic影响: %+v", okResult)
	}
}

func TestExecute_SharedContext(t *testing.T) {
	e := newTestEngine(t, 4)
	runCtx := newRunCtx()

	uow := newRecordingUOW()
	uow.behavior["writer"] = func() (interface{}, error) {
		runCtx.SetValue("token", "abc123")
		return nil, nil
	}

	report, err := e.Execute(runCtx, []*task.Descriptor[task.Params]{
		desc("writer"),
		desc("reader", "writer"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if len(report.CompletedTasks) != 2 {
		t.Fatalf("成功任务数错误: %v", report.CompletedTasks)
	}

	// 有依赖关系的任务之间可以通过共享上下文传递数据
	if got := runCtx.GetValueString("token"); got != "abc123" {
		t.Errorf("共享上下文数据错误，期望: abc123, 实际: %s", got)
	}
}

func TestExecute_StatusEvents(t *testing.T) {
	var mu sync.Mutex
	events := make(map[string]string)

	e, err := New[task.Params](Options{
		MaxWorkers: 4,
		StatusSink: func(ev *TaskStatusEvent) {
			mu.Lock()
			events[ev.TaskID] = ev.Status
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}

	uow := newRecordingUOW()
	uow.behavior["bad"] = func() (interface{}, error) {
		return nil, fmt.Errorf("失败")
	}

	_, err = e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{
		desc("good"),
		desc("bad"),
		desc("child", "bad"),
	}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if events["good"] != task.StatusSuccess {
		t.Errorf("good事件状态错误: %s", events["good"])
	}
	if events["bad"] != task.StatusFailed {
		t.Errorf("bad事件状态错误: %s", events["bad"])
	}
	if events["child"] != task.StatusSkipped {
		t.Errorf("child事件状态错误: %s", events["child"])
	}
}

func TestExecute_OutputRecorded(t *testing.T) {
	e := newTestEngine(t, 4)
	uow := newRecordingUOW()
	uow.behavior["a"] = func() (interface{}, error) {
		return map[string]int{"count": 42}, nil
	}

	report, err := e.Execute(newRunCtx(), []*task.Descriptor[task.Params]{desc("a")}, uow)
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	output, ok := report.Results["a"].Output.(map[string]int)
	if !ok || output["count"] != 42 {
		t.Errorf("任务输出错误: %v", report.Results["a"].Output)
	}
}
