package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Mode:     "dev",
		HTTPPort: 8080,
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: "wave-engine.db",
		},
		Engine: EngineConfig{
			MaxWorkers: 10,
		},
		Blackboard: BlackboardConfig{
			Store: "memory",
		},
	}
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		// 若文件不存在，返回默认配置
		return Default(), nil
	}

	// 解析YAML，未设置的字段使用默认值
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return cfg, nil
}

// DSN 根据数据库类型拼接连接字符串
func (c *Config) DSN() string {
	switch c.Database.Type {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName)
	case "postgres", "postgresql":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName)
	default:
		return c.Database.Path
	}
}
