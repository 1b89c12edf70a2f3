package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stevelan1995/wave-engine/pkg/core/dag"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

const (
	defaultMaxWorkers = 10
	maxGlobalWorkers  = 1000 // 最大并发数上限
)

// Engine 波次执行引擎（对外导出）
// 执行模型：先构图并检测循环，再按波次调度；每一波内的任务可并行，
// 波与波之间有屏障，上一波全部结束后下一波才开始
type Engine[P any] struct {
	maxWorkers int
	statusSink StatusSink
}

// New 创建引擎实例（对外导出的工厂方法）
func New[P any](opts Options) (*Engine[P], error) {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	if maxWorkers > maxGlobalWorkers {
		return nil, fmt.Errorf("最大并发数不能超过 %d", maxGlobalWorkers)
	}

	return &Engine[P]{
		maxWorkers: maxWorkers,
		statusSink: opts.StatusSink,
	}, nil
}

// Execute 执行一批任务（对外导出）
// 构图失败（重复ID/未知依赖/循环依赖）返回error，此时没有任何任务被执行；
// 任务级失败不产生error，全部体现在Report中
func (e *Engine[P]) Execute(runCtx *task.Context, tasks []*task.Descriptor[P], uow task.UnitOfWork[P]) (*Report, error) {
	if uow == nil {
		return nil, fmt.Errorf("任务执行函数不能为空")
	}
	if runCtx == nil {
		runCtx = task.NewContext(nil, uuid.New().String(), nil)
	}
	if runCtx.RunID == "" {
		runCtx.RunID = uuid.New().String()
	}

	g, err := dag.Build(tasks)
	if err != nil {
		return nil, fmt.Errorf("构建依赖图失败: %w", err)
	}

	waves, err := g.ScheduleWaves()
	if err != nil {
		return nil, fmt.Errorf("波次调度失败: %w", err)
	}

	report := &Report{
		RunID:   runCtx.RunID,
		Results: make(map[string]*task.ExecutionResult, g.Size()),
		Waves:   waves,
	}
	collector := newStatsCollector(g.Size())

	log.Printf("🚀 [开始运行] RunID=%s, 任务数=%d, 波次数=%d, 最大并发=%d",
		runCtx.RunID, g.Size(), len(waves), e.maxWorkers)

	// 失败或跳过的任务集合，用于向下游传播
	blocked := make(map[string]bool, g.Size())

	for waveIdx, wave := range waves {
		// 1. 调度时过滤：前置中有失败或跳过的任务，本任务直接跳过，不执行
		live := make([]*task.Descriptor[P], 0, len(wave))
		skippedCount := 0
		for _, id := range wave {
			desc, _ := g.Descriptor(id)
			if e.shouldSkip(g, id, blocked) {
				skippedCount++
				blocked[id] = true
				result := &task.ExecutionResult{
					TaskID:  id,
					Skipped: true,
					Error:   task.SkippedMessage,
				}
				report.Results[id] = result
				report.SkippedTasks = append(report.SkippedTasks, id)
				report.Errors = append(report.Errors, TaskError{TaskID: id, Error: task.SkippedMessage})
				log.Printf("⚠️ [任务已跳过] TaskID=%s, TaskName=%s, 波次=%d", id, desc.DisplayName(), waveIdx)
				e.emit(runCtx, desc, waveIdx, result)
				continue
			}
			live = append(live, desc)
		}

		// 2. 波内并行执行，屏障等待
		waveStart := time.Now()
		results := e.dispatchWave(runCtx, live, uow)
		waveWall := time.Since(waveStart)

		// 3. 汇总本波结果
		for i, result := range results {
			report.Results[result.TaskID] = result
			if result.Success {
				report.CompletedTasks = append(report.CompletedTasks, result.TaskID)
			} else {
				blocked[result.TaskID] = true
				report.FailedTasks = append(report.FailedTasks, result.TaskID)
				report.Errors = append(report.Errors, TaskError{TaskID: result.TaskID, Error: result.Error})
			}
			e.emit(runCtx, live[i], waveIdx, result)
		}

		collector.recordWave(waveWall, results, skippedCount)
	}

	report.Stats = collector.snapshot()
	log.Printf("✅ [运行结束] RunID=%s, 成功=%d, 失败=%d, 跳过=%d, 总墙钟时间=%v, 并行节省=%v",
		runCtx.RunID, report.Stats.Successful, report.Stats.Failed, report.Stats.Skipped,
		report.Stats.TotalWallTime, report.Stats.ParallelTimeSaved)

	return report, nil
}

// shouldSkip 检查任务的前置中是否有失败或跳过的任务（内部方法）
func (e *Engine[P]) shouldSkip(g *dag.Graph[P], id string, blocked map[string]bool) bool {
	for _, depID := range g.Dependencies(id) {
		if blocked[depID] {
			return true
		}
	}
	return false
}

// emit 发送任务状态事件（内部方法）
func (e *Engine[P]) emit(runCtx *task.Context, desc *task.Descriptor[P], wave int, result *task.ExecutionResult) {
	if e.statusSink == nil {
		return
	}
	e.statusSink(&TaskStatusEvent{
		RunID:     runCtx.RunID,
		TaskID:    result.TaskID,
		TaskName:  desc.DisplayName(),
		Wave:      wave,
		Status:    result.State(),
		Error:     result.Error,
		Duration:  result.Duration,
		Timestamp: time.Now(),
	})
}
