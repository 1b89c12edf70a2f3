package mysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stevelan1995/wave-engine/pkg/storage"
)

// 匹配表级联合主键声明，如 PRIMARY KEY (run_id, task_id)
var compositeKeyPattern = regexp.MustCompile(`PRIMARY KEY \(([^)]+)\)`)

// MySQLDialect MySQL方言实现（对外导出）
type MySQLDialect struct{}

// NewMySQLDialect 创建MySQL方言实例
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Name 返回方言名称
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// Placeholder 返回占位符（MySQL使用?）
func (d *MySQLDialect) Placeholder(index int) string {
	return "?"
}

// UpsertSQL 返回MySQL的UPSERT语句（使用ON DUPLICATE KEY UPDATE）
func (d *MySQLDialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		strings.Join(updateParts, ", "),
	)
}

// CreateTableSQL 转换DDL为MySQL兼容格式
func (d *MySQLDialect) CreateTableSQL(schema string) string {
	result := schema

	// MySQL的TEXT列不能作为主键，替换为VARCHAR(191)
	result = strings.ReplaceAll(result, "TEXT PRIMARY KEY", "VARCHAR(191) PRIMARY KEY")

	// 联合主键中的TEXT列同样不能作为键（错误1170），逐列替换
	if m := compositeKeyPattern.FindStringSubmatch(result); m != nil {
		for _, col := range strings.Split(m[1], ",") {
			col = strings.TrimSpace(col)
			result = strings.ReplaceAll(result, col+" TEXT", col+" VARCHAR(191)")
		}
	}

	// 替换REAL为DOUBLE
	result = strings.ReplaceAll(result, "REAL", "DOUBLE")

	return result
}

// ConfigureDB 返回MySQL配置SQL
func (d *MySQLDialect) ConfigureDB() []string {
	return []string{
		"SET SESSION sql_mode = 'STRICT_TRANS_TABLES';",
	}
}

// 确保实现接口
var _ storage.Dialect = (*MySQLDialect)(nil)
