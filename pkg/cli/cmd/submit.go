package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/cli/waveengine"
)

// submitCmd 提交计划到服务端执行
var submitCmd = &cobra.Command{
	Use:   "submit <plan.yaml>",
	Short: "提交计划到服务端执行",
	Long: `将计划文件提交到Wave Engine服务端同步执行，并返回完整结果。

示例：
  wave-engine submit ./examples/demo.yaml
  wave-engine submit ./examples/demo.yaml --server http://engine:8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			output.Error("读取计划文件失败: %v", err)
			return err
		}

		client := waveengine.New(serverURL)
		report, err := client.SubmitRun(string(content))
		if err != nil {
			output.Error("提交计划失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(report)
		}

		printReport(args[0], report)

		if report.Stats.Failed > 0 {
			return fmt.Errorf("%d 个任务失败", report.Stats.Failed)
		}
		return nil
	},
}
