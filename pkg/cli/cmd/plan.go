package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/core/dag"
	"github.com/stevelan1995/wave-engine/pkg/core/plan"
)

// planCmd 计划管理命令
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "计划管理命令",
	Long:  `校验和检查计划文件。`,
}

// planValidateCmd 校验计划文件
var planValidateCmd = &cobra.Command{
	Use:   "validate <plan.yaml>",
	Short: "校验计划文件",
	Long: `校验计划文件：字段完整性、重复ID、未知依赖、循环依赖，
并输出波次调度预览（不执行任何任务）。

示例：
  wave-engine plan validate ./examples/demo.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			output.Error("计划校验失败: %v", err)
			return err
		}

		// 构图检测重复ID/未知依赖/循环依赖
		g, err := dag.Build(p.Descriptors())
		if err != nil {
			output.Error("计划校验失败: %v", err)
			return err
		}
		waves, err := g.ScheduleWaves()
		if err != nil {
			output.Error("计划校验失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(map[string]interface{}{
				"name":  p.Name,
				"tasks": g.Size(),
				"waves": waves,
			})
		}

		output.Success("计划 %s 校验通过: 任务数=%d, 波次数=%d", p.Name, g.Size(), len(waves))

		table := output.NewTable([]string{"WAVE", "TASKS"})
		for waveIdx, wave := range waves {
			table.AddRow([]string{
				fmt.Sprintf("%d", waveIdx),
				fmt.Sprintf("%v", wave),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	planCmd.AddCommand(planValidateCmd)
}
