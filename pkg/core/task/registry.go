package task

import (
	"fmt"
	"sync"
)

// HandlerMeta 处理器元数据（对外导出）
type HandlerMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry 处理器注册中心（对外导出）
// 处理器名称 -> UnitOfWork的映射，计划层通过名称查找任务的执行逻辑
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]UnitOfWork[Params]
	metaMap  map[string]*HandlerMeta
}

// NewRegistry 创建处理器注册中心（对外导出）
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]UnitOfWork[Params]),
		metaMap:  make(map[string]*HandlerMeta),
	}
}

// Register 注册处理器（对外导出）
// name: 处理器名称（唯一标识）
// handler: 处理器实现
// description: 处理器描述（可选）
func (r *Registry) Register(name string, handler UnitOfWork[Params], description string) error {
	if name == "" {
		return fmt.Errorf("处理器名称不能为空")
	}
	if handler == nil {
		return fmt.Errorf("处理器不能为空")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("处理器 %s 已注册", name)
	}

	r.handlers[name] = handler
	r.metaMap[name] = &HandlerMeta{Name: name, Description: description}
	return nil
}

// RegisterFunc 注册函数形式的处理器（对外导出）
func (r *Registry) RegisterFunc(name string, fn UnitOfWorkFunc[Params], description string) error {
	return r.Register(name, fn, description)
}

// Get 根据名称获取处理器（对外导出）
func (r *Registry) Get(name string) UnitOfWork[Params] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}

// List 获取所有已注册处理器的元数据（对外导出）
func (r *Registry) List() []*HandlerMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]*HandlerMeta, 0, len(r.metaMap))
	for _, meta := range r.metaMap {
		metas = append(metas, meta)
	}
	return metas
}

// Dispatch 返回按处理器名称分发的UnitOfWork（对外导出）
// 任务描述符的载荷中必须包含 handler 字段，否则任务失败
func (r *Registry) Dispatch() UnitOfWork[Params] {
	return UnitOfWorkFunc[Params](func(ctx *Context, desc *Descriptor[Params]) (interface{}, error) {
		handlerName := desc.Payload.GetString("handler")
		if handlerName == "" {
			return nil, fmt.Errorf("任务 %s 未指定处理器", desc.ID)
		}

		handler := r.Get(handlerName)
		if handler == nil {
			return nil, fmt.Errorf("处理器 %s 未注册", handlerName)
		}

		return handler.Execute(ctx, desc)
	})
}
