package blackboard

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stevelan1995/wave-engine/pkg/storage"
)

// 以SQLite风格为基准的DDL，各方言通过CreateTableSQL转换
// 列名用artifact_key避开MySQL保留字key
const artifactSchema = `
CREATE TABLE IF NOT EXISTS artifact (
	artifact_key TEXT PRIMARY KEY,
	value TEXT,
	expire_time DATETIME
);
`

// artifactDAO 产物数据库映射（内部使用）
type artifactDAO struct {
	Key        string       `db:"artifact_key"`
	Value      string       `db:"value"`
	ExpireTime sql.NullTime `db:"expire_time"`
}

// DBStore 数据库产物存储（对外导出）
// 多进程共享产物时使用；进程内场景使用MemoryStore作为降级替代
// 产物通过JSON序列化存储，因此只支持可JSON化的值
type DBStore struct {
	db      *sqlx.DB
	dialect storage.Dialect
}

// NewDBStore 创建数据库产物存储实例（对外导出）
func NewDBStore(db *sqlx.DB, dialect storage.Dialect) (*DBStore, error) {
	s := &DBStore{db: db, dialect: dialect}
	if _, err := db.Exec(dialect.CreateTableSQL(artifactSchema)); err != nil {
		return nil, fmt.Errorf("初始化产物表结构失败: %w", err)
	}
	return s, nil
}

// Put 写入产物
func (s *DBStore) Put(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return nil // 空key，忽略
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化产物失败: key=%s, Error=%w", key, err)
	}

	d := &artifactDAO{Key: key, Value: string(valueJSON)}
	if ttl > 0 {
		d.ExpireTime = sql.NullTime{Valid: true, Time: time.Now().Add(ttl)}
	}

	query := s.dialect.UpsertSQL("artifact",
		[]string{"artifact_key", "value", "expire_time"}, "artifact_key", []string{"value", "expire_time"})
	if _, err := s.db.NamedExec(query, d); err != nil {
		return fmt.Errorf("写入产物失败: key=%s, Error=%w", key, err)
	}
	return nil
}

// Get 读取产物
func (s *DBStore) Get(key string) (interface{}, bool) {
	if key == "" {
		return nil, false
	}

	var d artifactDAO
	query := s.db.Rebind(`SELECT artifact_key, value, expire_time FROM artifact WHERE artifact_key = ?`)
	if err := s.db.Get(&d, query, key); err != nil {
		// 未找到与查询失败都按不存在处理
		return nil, false
	}

	// 检查是否过期
	if d.ExpireTime.Valid && time.Now().After(d.ExpireTime.Time) {
		s.Delete(key)
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal([]byte(d.Value), &value); err != nil {
		return nil, false
	}
	return value, true
}

// Delete 删除产物
func (s *DBStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	query := s.db.Rebind(`DELETE FROM artifact WHERE artifact_key = ?`)
	if _, err := s.db.Exec(query, key); err != nil {
		return fmt.Errorf("删除产物失败: key=%s, Error=%w", key, err)
	}
	return nil
}

// Clear 清空所有产物
func (s *DBStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM artifact`); err != nil {
		return fmt.Errorf("清空产物失败: %w", err)
	}
	return nil
}

// 确保实现接口
var _ Store = (*DBStore)(nil)
var _ Store = (*MemoryStore)(nil)
