package task

// UnitOfWork 任务执行函数接口（对外导出）
// 引擎对每个未被跳过的任务调用一次Execute；返回error表示任务失败，
// 失败会传播给所有下游任务（下游被跳过，不会调用Execute）
type UnitOfWork[P any] interface {
	Execute(ctx *Context, desc *Descriptor[P]) (interface{}, error)
}

// UnitOfWorkFunc 函数形式的UnitOfWork（对外导出）
type UnitOfWorkFunc[P any] func(ctx *Context, desc *Descriptor[P]) (interface{}, error)

// Execute 实现UnitOfWork接口
func (f UnitOfWorkFunc[P]) Execute(ctx *Context, desc *Descriptor[P]) (interface{}, error) {
	return f(ctx, desc)
}
