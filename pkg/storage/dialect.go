package storage

// Dialect SQL方言接口（对外导出）
// 同一套存储实现通过方言适配SQLite/MySQL/PostgreSQL的语法差异
type Dialect interface {
	// Name 返回方言名称
	Name() string

	// Placeholder 返回第index个位置参数的占位符（index从1开始）
	Placeholder(index int) string

	// UpsertSQL 返回INSERT-or-UPDATE语句（使用sqlx的:name命名占位符）
	// tableName: 表名
	// columns: 全部列名
	// conflictColumn: 冲突判定列（联合主键时为逗号分隔的列名）
	// updateColumns: 冲突时需要更新的列名
	UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string

	// CreateTableSQL 将SQLite基准DDL转换为当前方言兼容的DDL
	CreateTableSQL(schema string) string

	// ConfigureDB 返回建连后需要执行的配置SQL（如SQLite的PRAGMA）
	ConfigureDB() []string
}
