package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stevelan1995/wave-engine/pkg/core/task"
)

// TaskSpec 计划中的单个任务定义（对外导出）
type TaskSpec struct {
	ID        string                 `yaml:"id" json:"id"`
	Name      string                 `yaml:"name" json:"name"`
	Handler   string                 `yaml:"handler" json:"handler"`
	DependsOn []string               `yaml:"depends_on" json:"depends_on"`
	Params    map[string]interface{} `yaml:"params" json:"params"`
}

// Plan 执行计划（对外导出）
// 一份计划描述一批带依赖关系的任务，提交后由引擎按波次执行
type Plan struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Tasks       []*TaskSpec `yaml:"tasks" json:"tasks"`
}

// Parse 从YAML内容解析计划（对外导出）
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("解析计划失败: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile 从YAML文件加载计划（对外导出）
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取计划文件失败: %w", err)
	}
	return Parse(data)
}

// Validate 校验计划的基本完整性（对外导出）
// 只做字段级校验；重复ID、未知依赖、循环依赖由引擎构图时检测
func (p *Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("计划名称不能为空")
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("计划 %s 没有任务", p.Name)
	}
	for i, t := range p.Tasks {
		if t == nil || t.ID == "" {
			return fmt.Errorf("计划 %s 第%d个任务缺少id", p.Name, i+1)
		}
		if t.Handler == "" {
			return fmt.Errorf("任务 %s 缺少handler", t.ID)
		}
	}
	return nil
}

// Descriptors 将计划转换为任务描述符列表（对外导出）
// 载荷中注入handler字段，供Registry.Dispatch按名称分发
func (p *Plan) Descriptors() []*task.Descriptor[task.Params] {
	descs := make([]*task.Descriptor[task.Params], 0, len(p.Tasks))
	for _, t := range p.Tasks {
		payload := make(task.Params, len(t.Params)+1)
		for k, v := range t.Params {
			payload[k] = v
		}
		payload["handler"] = t.Handler

		descs = append(descs, &task.Descriptor[task.Params]{
			ID:           t.ID,
			Name:         t.Name,
			Dependencies: t.DependsOn,
			Payload:      payload,
		})
	}
	return descs
}
