package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/core/engine"
	"github.com/stevelan1995/wave-engine/pkg/core/plan"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
	"github.com/stevelan1995/wave-engine/pkg/service"
)

var runWorkers int

// runCmd 本地执行计划
var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "在本地执行一份计划",
	Long: `在本地进程内执行一份计划，不依赖服务端。

示例：
  # 执行计划
  wave-engine run ./examples/demo.yaml

  # 指定波内最大并发数
  wave-engine run ./examples/demo.yaml --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			output.Error("加载计划失败: %v", err)
			return err
		}

		registry := task.NewRegistry()
		if err := task.RegisterDefaults(registry); err != nil {
			return err
		}

		svc := service.New(registry, service.Options{MaxWorkers: runWorkers})
		report, err := svc.RunPlan(context.Background(), p)
		if err != nil {
			output.Error("执行计划失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(report)
		}

		printReport(p.Name, report)

		if report.Stats.Failed > 0 {
			return fmt.Errorf("%d 个任务失败", report.Stats.Failed)
		}
		return nil
	},
}

// printReport 输出执行结果表格
func printReport(planName string, report *engine.Report) {
	output.Info("计划 %s 执行完成, RunID=%s", planName, report.RunID)

	table := output.NewTable([]string{"WAVE", "TASK", "STATUS", "DURATION", "ERROR"})
	for waveIdx, wave := range report.Waves {
		for _, id := range wave {
			result := report.Results[id]
			if result == nil {
				continue
			}
			table.AddRow([]string{
				fmt.Sprintf("%d", waveIdx),
				id,
				output.ColorStatus(result.State()),
				result.Duration.String(),
				result.Error,
			})
		}
	}
	table.Render()

	fmt.Println()
	output.Info("波次: %d, 成功: %d, 失败: %d, 跳过: %d",
		report.Stats.WaveCount, report.Stats.Successful, report.Stats.Failed, report.Stats.Skipped)
	output.Info("总墙钟时间: %v, 并行节省: %v",
		report.Stats.TotalWallTime, report.Stats.ParallelTimeSaved)
}

func init() {
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 10, "波内最大并发数")
}
