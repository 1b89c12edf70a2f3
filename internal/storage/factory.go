package storage

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	pkgstorage "github.com/stevelan1995/wave-engine/pkg/storage"
	"github.com/stevelan1995/wave-engine/pkg/storage/mysql"
	"github.com/stevelan1995/wave-engine/pkg/storage/postgres"
	pkgsqlite "github.com/stevelan1995/wave-engine/pkg/storage/sqlite"
)

// Open 打开数据库连接并返回对应方言（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串（sqlite时为文件路径）
func Open(dbType, dsn string) (*sqlx.DB, pkgstorage.Dialect, error) {
	var (
		driver  string
		dialect pkgstorage.Dialect
	)

	switch dbType {
	case "sqlite":
		driver = "sqlite3"
		dialect = pkgsqlite.NewSQLiteDialect()
	case "mysql":
		driver = "mysql"
		dialect = mysql.NewMySQLDialect()
	case "postgres", "postgresql":
		driver = "postgres"
		dialect = postgres.NewPostgresDialect()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("打开数据库失败: type=%s, Error=%w", dbType, err)
	}

	// 执行方言特定的连接配置（如SQLite的PRAGMA）
	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("配置数据库失败: %s, Error=%w", stmt, err)
		}
	}

	return db, dialect, nil
}
