package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/internal/storage"
	"github.com/stevelan1995/wave-engine/internal/storage/sqlrepo"
	"github.com/stevelan1995/wave-engine/pkg/api"
	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/config"
	"github.com/stevelan1995/wave-engine/pkg/core/blackboard"
	"github.com/stevelan1995/wave-engine/pkg/core/events"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
	"github.com/stevelan1995/wave-engine/pkg/service"
)

var (
	serverPort int
	serverHost string
	configPath string
)

// serverCmd server子命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "服务管理命令",
	Long:  `管理Wave Engine HTTP API服务。`,
}

// serverStartCmd 启动服务
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动HTTP API服务",
	Long: `启动Wave Engine HTTP API服务。

示例：
  # 使用默认配置启动
  wave-engine server start

  # 指定端口启动
  wave-engine server start --port 8080

  # 指定配置文件启动
  wave-engine server start --config ./configs/engine.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		if serverPort > 0 {
			cfg.HTTPPort = serverPort
		}

		svc, cleanup, err := buildService(cfg)
		if err != nil {
			output.Error("初始化服务失败: %v", err)
			return err
		}
		defer cleanup()

		// 创建并启动API服务器
		serverConfig := api.DefaultServerConfig()
		serverConfig.Host = serverHost
		serverConfig.Port = cfg.HTTPPort
		apiServer := api.NewAPIServer(svc, serverConfig, Version)

		go func() {
			if err := apiServer.Start(); err != nil {
				log.Printf("API服务器错误: %v", err)
			}
		}()

		output.Success("Wave Engine Server started on %s:%d", serverHost, cfg.HTTPPort)

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		output.Info("正在关闭服务...")

		// 优雅关闭
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			output.Error("关闭API服务器失败: %v", err)
		}

		output.Success("服务已停止")
		return nil
	},
}

// buildService 按配置组装服务依赖（内部方法）
func buildService(cfg *config.Config) (*service.Service, func(), error) {
	registry := task.NewRegistry()
	if err := task.RegisterDefaults(registry); err != nil {
		return nil, nil, err
	}

	opts := service.Options{
		MaxWorkers: cfg.Engine.MaxWorkers,
		Bus:        events.NewBus(cfg.Mode == "dev"),
	}

	cleanups := []func(){func() { opts.Bus.Close() }}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	if cfg.Blackboard.TTL != "" {
		ttl, err := time.ParseDuration(cfg.Blackboard.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("产物TTL配置无效: %w", err)
		}
		opts.DefaultTTL = ttl
	}

	// 打开数据库：运行历史存储，以及按配置选择的数据库产物存储
	db, dialect, err := storage.Open(cfg.Database.Type, cfg.DSN())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { db.Close() })

	repo, err := sqlrepo.NewRunRepo(db, dialect)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	opts.Repo = repo

	if cfg.Blackboard.Store == "db" {
		store, err := blackboard.NewDBStore(db, dialect)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Artifacts = store
	} else {
		memStore := blackboard.NewMemoryStore()
		cleanups = append(cleanups, memStore.Close)
		opts.Artifacts = memStore
	}

	return service.New(registry, opts), cleanup, nil
}

func init() {
	serverStartCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "监听端口（覆盖配置文件）")
	serverStartCmd.Flags().StringVarP(&serverHost, "host", "H", "0.0.0.0", "监听地址")
	serverStartCmd.Flags().StringVarP(&configPath, "config", "c", "./configs/engine.yaml", "配置文件路径")

	serverCmd.AddCommand(serverStartCmd)
}
