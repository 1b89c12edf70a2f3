package config

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type     string `yaml:"type"` // sqlite/mysql/postgres
	Path     string `yaml:"path"` // sqlite文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// EngineConfig 引擎配置
type EngineConfig struct {
	MaxWorkers int `yaml:"max_workers"` // 单波次内最大并发数
}

// BlackboardConfig 产物存储配置
type BlackboardConfig struct {
	Store string `yaml:"store"` // memory/db
	TTL   string `yaml:"ttl"`   // 产物默认过期时间，如 "10m"，空表示不过期
}

// Config 服务核心配置
type Config struct {
	Mode       string           `yaml:"mode"`
	HTTPPort   int              `yaml:"http_port"`
	Database   DatabaseConfig   `yaml:"database"`
	Engine     EngineConfig     `yaml:"engine"`
	Blackboard BlackboardConfig `yaml:"blackboard"`
}
