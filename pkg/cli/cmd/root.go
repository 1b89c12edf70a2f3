package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "wave-engine",
	Short: "Wave Engine CLI - 依赖感知的并行任务执行工具",
	Long: `Wave Engine CLI 是一个依赖感知的并行任务执行命令行工具。

任务按依赖关系组织成有向无环图，引擎将其划分为若干波次：
同一波次内的任务并行执行，波与波之间顺序推进；
失败任务的下游会被自动跳过。

使用示例：
  # 本地执行一份计划
  wave-engine run ./examples/demo.yaml

  # 提交计划到服务端执行
  wave-engine submit ./examples/demo.yaml

  # 查询运行历史
  wave-engine history list

  # 启动HTTP服务
  wave-engine server start --port 8080`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Wave Engine服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(handlersCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
