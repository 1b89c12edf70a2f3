package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/cli/waveengine"
)

var (
	historyLimit  int
	historyOffset int
)

// historyCmd 运行历史命令
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "运行历史管理命令",
	Long:  `查询Wave Engine服务端的运行历史记录。`,
}

// historyListCmd 列出运行历史
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出运行历史",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := waveengine.New(serverURL)
		resp, err := client.ListRuns(historyLimit, historyOffset)
		if err != nil {
			output.Error("查询运行历史失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(resp)
		}

		table := output.NewTable([]string{"RUN ID", "PLAN", "STATUS", "TASKS", "FAILED", "SKIPPED", "WALL TIME", "SAVED", "STARTED"})
		for _, run := range resp.Items {
			table.AddRow([]string{
				run.ID,
				run.PlanName,
				output.ColorStatus(run.Status),
				fmt.Sprintf("%d", run.TotalTasks),
				fmt.Sprintf("%d", run.Failed),
				fmt.Sprintf("%d", run.Skipped),
				run.TotalWallTime,
				run.ParallelTimeSaved,
				run.StartedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		output.Info("共 %d 条记录", resp.Total)
		return nil
	},
}

// historyShowCmd 查看运行详情
var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "查看某次运行的详情",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := waveengine.New(serverURL)
		detail, err := client.GetRun(args[0])
		if err != nil {
			output.Error("查询运行详情失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(detail)
		}

		output.Info("计划: %s, 状态: %s, 总墙钟时间: %s, 并行节省: %s",
			detail.PlanName, detail.Status, detail.TotalWallTime, detail.ParallelTimeSaved)
		if detail.ErrorMessage != "" {
			output.Warning("错误信息: %s", detail.ErrorMessage)
		}

		table := output.NewTable([]string{"WAVE", "TASK", "NAME", "STATUS", "DURATION", "ERROR"})
		for _, t := range detail.Tasks {
			table.AddRow([]string{
				fmt.Sprintf("%d", t.Wave),
				t.TaskID,
				t.Name,
				output.ColorStatus(t.Status),
				t.Duration,
				t.Error,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "返回条数")
	historyListCmd.Flags().IntVarP(&historyOffset, "offset", "o", 0, "偏移量")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
