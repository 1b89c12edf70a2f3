package dag

import (
	"fmt"

	godag "github.com/begmaroman/go-dag"

	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

// vertex go-dag节点包装（内部使用，实现 Identifiable 接口）
type vertex[P any] struct {
	desc *task.Descriptor[P]
}

// ID 实现 Identifiable 接口
func (v *vertex[P]) ID() string {
	return v.desc.ID
}

// Hash 实现 Hashable 接口，节点身份以任务ID为准
func (v *vertex[P]) Hash() (godag.VHash, error) {
	return godag.ToHash(v.desc.ID)
}

// Graph 任务依赖图（对外导出）
// 构建成功即保证无重复ID、无未知依赖、无循环依赖
type Graph[P any] struct {
	d     *godag.DAG[*vertex[P]]
	order []string                       // 输入顺序，波次内排序的依据
	descs map[string]*task.Descriptor[P] // 任务ID -> 描述符
	deps  map[string][]string            // 任务ID -> 去重后的前置任务ID列表
}

// Build 从任务描述符列表构建依赖图（对外导出）
// 校验顺序：重复ID -> 未知依赖 -> 循环依赖，任一失败则整体失败
func Build[P any](tasks []*task.Descriptor[P]) (*Graph[P], error) {
	g := &Graph[P]{
		d:     godag.NewDAG[*vertex[P]](),
		order: make([]string, 0, len(tasks)),
		descs: make(map[string]*task.Descriptor[P], len(tasks)),
		deps:  make(map[string][]string, len(tasks)),
	}

	// 1. 注册所有节点，检测重复ID
	for _, t := range tasks {
		if t == nil || t.ID == "" {
			return nil, fmt.Errorf("任务ID不能为空")
		}
		if _, exists := g.descs[t.ID]; exists {
			return nil, &DuplicateTaskError{TaskID: t.ID}
		}
		g.descs[t.ID] = t
		g.order = append(g.order, t.ID)
	}

	// 2. 校验依赖引用并去重（同一前置声明多次只算一条边）
	for _, t := range tasks {
		seen := make(map[string]bool, len(t.Dependencies))
		deduped := make([]string, 0, len(t.Dependencies))
		for _, depID := range t.Dependencies {
			if _, exists := g.descs[depID]; !exists {
				return nil, &UnknownDependencyError{TaskID: t.ID, DependencyID: depID}
			}
			if seen[depID] {
				continue
			}
			seen[depID] = true
			deduped = append(deduped, depID)
		}
		g.deps[t.ID] = deduped
	}

	// 3. 一次性检测循环（使用高效的DFS算法），避免逐边检查的开销
	if cycle := g.detectCycle(); cycle != nil {
		return nil, cycle
	}

	// 4. 构建 go-dag 实例（已确认无环，AddEdge不会失败）
	for _, id := range g.order {
		if _, err := g.d.AddVertex(&vertex[P]{desc: g.descs[id]}); err != nil {
			return nil, fmt.Errorf("添加节点失败: Task ID=%s, Error=%w", id, err)
		}
	}
	for _, id := range g.order {
		for _, depID := range g.deps[id] {
			// 边方向：前置任务 -> 后置任务
			if err := g.d.AddEdge(depID, id); err != nil {
				return nil, fmt.Errorf("添加边失败: %s -> %s, Error=%w", depID, id, err)
			}
		}
	}

	return g, nil
}

// detectCycle 使用DFS检测循环依赖（内部方法）
// 三色标记法：0=白色（未访问），1=灰色（正在访问），2=黑色（已访问）
func (g *Graph[P]) detectCycle() *CycleError {
	// 邻接表：前置任务 -> 后置任务列表
	children := make(map[string][]string, len(g.order))
	for _, id := range g.order {
		for _, depID := range g.deps[id] {
			children[depID] = append(children[depID], id)
		}
	}

	color := make(map[string]int, len(g.order))
	parent := make(map[string]string, len(g.order))
	var cyclePath []string

	var dfs func(nodeID string) bool
	dfs = func(nodeID string) bool {
		color[nodeID] = 1

		for _, childID := range children[nodeID] {
			if color[childID] == 0 {
				// 白色节点，递归访问
				parent[childID] = nodeID
				if dfs(childID) {
					return true
				}
			} else if color[childID] == 1 {
				// 灰色节点，说明存在后向边，检测到循环
				// 沿parent链回溯构建循环路径
				cyclePath = append(cyclePath, childID)
				cur := nodeID
				for cur != childID && cur != "" {
					cyclePath = append(cyclePath, cur)
					cur = parent[cur]
				}
				cyclePath = append(cyclePath, childID) // 闭合循环
				// 反转为依赖方向的可读顺序
				for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
					cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
				}
				return true
			}
			// 黑色节点，跳过
		}

		color[nodeID] = 2
		return false
	}

	for _, id := range g.order {
		if color[id] == 0 {
			if dfs(id) {
				return &CycleError{Path: cyclePath}
			}
		}
	}
	return nil
}

// ScheduleWaves 计算波次调度结果（对外导出）
// Kahn算法分层：每一波为当前所有前置均已完成的任务，波内顺序与输入顺序一致
// 若调度停滞（无就绪任务但仍有剩余），说明剩余子图存在循环，返回CycleError
func (g *Graph[P]) ScheduleWaves() (Waves, error) {
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.deps[id])
	}

	waves := make(Waves, 0)
	scheduled := make(map[string]bool, len(g.order))
	remaining := len(g.order)

	for remaining > 0 {
		// 按输入顺序扫描，保证波内顺序确定性
		wave := make([]string, 0)
		for _, id := range g.order {
			if !scheduled[id] && inDegree[id] == 0 {
				wave = append(wave, id)
			}
		}

		if len(wave) == 0 {
			// 停滞：剩余任务之间存在循环依赖
			if cycle := g.detectCycle(); cycle != nil {
				return nil, cycle
			}
			return nil, &CycleError{}
		}

		for _, id := range wave {
			scheduled[id] = true
			remaining--
			children, err := g.d.GetChildren(id)
			if err != nil {
				return nil, fmt.Errorf("获取子节点失败: Task ID=%s, Error=%w", id, err)
			}
			for childID := range children {
				inDegree[childID]--
			}
		}
		waves = append(waves, wave)
	}

	return waves, nil
}

// Descriptor 获取指定任务的描述符（对外导出）
func (g *Graph[P]) Descriptor(id string) (*task.Descriptor[P], bool) {
	desc, ok := g.descs[id]
	return desc, ok
}

// Dependencies 获取指定任务去重后的前置任务ID列表（对外导出）
func (g *Graph[P]) Dependencies(id string) []string {
	return g.deps[id]
}

// Order 获取任务的输入顺序（对外导出）
func (g *Graph[P]) Order() []string {
	return g.order
}

// Size 获取任务数量（对外导出）
func (g *Graph[P]) Size() int {
	return len(g.order)
}

// Roots 获取所有无前置的根任务ID（对外导出）
func (g *Graph[P]) Roots() []string {
	roots := make([]string, 0)
	for _, id := range g.order {
		if len(g.deps[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}
