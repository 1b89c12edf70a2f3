package task

import (
	"context"
	"fmt"

	"github.com/stevelan1995/wave-engine/pkg/core/blackboard"
)

// Context 运行上下文（对外导出）
// 同一次运行中所有任务共享同一个实例（按引用传递，引擎不加锁不拷贝）
// 同一波次内相互独立的任务可能并发读写本上下文，可变状态的互斥由调用方负责；
// 引擎仅保证存在依赖关系的两个任务绝不并发执行
type Context struct {
	ctx       context.Context        // 底层context，调用方可用于自行实现超时
	RunID     string                 // 运行ID
	PlanName  string                 // 计划名称（可为空）
	Values    map[string]interface{} // 调用方自有的共享数据
	Artifacts blackboard.Store       // 任务间产物交换存储
}

// NewContext 创建运行上下文（对外导出）
// artifacts为nil时使用进程内内存存储作为降级替代
func NewContext(ctx context.Context, runID string, artifacts blackboard.Store) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if artifacts == nil {
		artifacts = blackboard.NewMemoryStore()
	}
	return &Context{
		ctx:       ctx,
		RunID:     runID,
		Values:    make(map[string]interface{}),
		Artifacts: artifacts,
	}
}

// Context 返回底层context.Context（对外导出）
// 引擎不提供超时与取消；需要超时的任务函数应基于此自行派生
func (c *Context) Context() context.Context {
	return c.ctx
}

// GetValue 获取共享数据（对外导出）
func (c *Context) GetValue(key string) interface{} {
	if c.Values == nil {
		return nil
	}
	return c.Values[key]
}

// GetValueString 获取字符串形式的共享数据（对外导出）
func (c *Context) GetValueString(key string) string {
	val := c.GetValue(key)
	if val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", val)
}

// SetValue 设置共享数据（对外导出）
// 并发任务同时调用时的互斥由调用方负责
func (c *Context) SetValue(key string, value interface{}) {
	if c.Values == nil {
		c.Values = make(map[string]interface{})
	}
	c.Values[key] = value
}

// Done 返回底层context的取消通知channel（对外导出）
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Err 返回底层context的错误（对外导出）
func (c *Context) Err() error {
	return c.ctx.Err()
}
