package engine

import (
	"time"

	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

// statsCollector 运行统计收集器（内部结构）
type statsCollector struct {
	stats RunStats
}

func newStatsCollector(totalTasks int) *statsCollector {
	return &statsCollector{
		stats: RunStats{TotalTasks: totalTasks},
	}
}

// recordWave 记录一个波次的结果（内部方法）
// wallTime: 波次墙钟时间
// executed: 本波实际执行（未跳过）的任务结果
// skippedCount: 本波跳过的任务数
func (c *statsCollector) recordWave(wallTime time.Duration, executed []*task.ExecutionResult, skippedCount int) {
	c.stats.WaveCount++
	c.stats.TotalWallTime += wallTime
	c.stats.Skipped += skippedCount

	var serialTime time.Duration
	for _, r := range executed {
		serialTime += r.Duration
		if r.Success {
			c.stats.Successful++
		} else {
			c.stats.Failed++
		}
	}

	// 并行节省时间 = 串行总耗时 - 墙钟时间
	// 只统计实际并行执行（至少2个任务）的波次，且永不为负
	if len(executed) >= 2 {
		if saved := serialTime - wallTime; saved > 0 {
			c.stats.ParallelTimeSaved += saved
		}
	}
}

func (c *statsCollector) snapshot() *RunStats {
	s := c.stats
	return &s
}
