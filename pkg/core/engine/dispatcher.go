package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

// dispatchWave 执行一个波次内的所有任务（内部方法）
// 波内任务相互独立：单任务直接在当前goroutine执行，避免调度开销；
// 多任务通过Worker池限制并发数，等待全部完成后返回（波次屏障）
func (e *Engine[P]) dispatchWave(runCtx *task.Context, descs []*task.Descriptor[P], uow task.UnitOfWork[P]) []*task.ExecutionResult {
	if len(descs) == 0 {
		return nil
	}

	if len(descs) == 1 {
		return []*task.ExecutionResult{e.runOne(runCtx, descs[0], uow)}
	}

	results := make([]*task.ExecutionResult, len(descs))
	workerPool := make(chan struct{}, e.maxWorkers)
	var wg sync.WaitGroup

	for i, desc := range descs {
		workerPool <- struct{}{}
		wg.Add(1)
		go func(idx int, d *task.Descriptor[P]) {
			defer func() {
				<-workerPool
				wg.Done()
			}()
			results[idx] = e.runOne(runCtx, d, uow)
		}(i, desc)
	}

	wg.Wait()
	return results
}

// runOne 执行单个任务（内部方法）
// panic会被捕获并转换为失败结果，不影响同波次的其他任务
func (e *Engine[P]) runOne(runCtx *task.Context, desc *task.Descriptor[P], uow task.UnitOfWork[P]) (result *task.ExecutionResult) {
	startTime := time.Now()
	result = &task.ExecutionResult{TaskID: desc.ID}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("任务执行panic: %v", r)
			result.Duration = time.Since(startTime)
			log.Printf("❌ [任务执行panic] TaskID=%s, TaskName=%s, 原因=%v", desc.ID, desc.DisplayName(), r)
		}
	}()

	log.Printf("🚀 [开始执行任务] TaskID=%s, TaskName=%s", desc.ID, desc.DisplayName())

	output, err := uow.Execute(runCtx, desc)
	result.Duration = time.Since(startTime)

	if err != nil {
		result.Success = false
		result.Error = err.Error()
		log.Printf("❌ [任务执行失败] TaskID=%s, TaskName=%s, 耗时=%v, 错误=%v",
			desc.ID, desc.DisplayName(), result.Duration, err)
		return result
	}

	result.Success = true
	result.Output = output
	log.Printf("✅ [任务执行成功] TaskID=%s, TaskName=%s, 耗时=%v", desc.ID, desc.DisplayName(), result.Duration)
	return result
}
