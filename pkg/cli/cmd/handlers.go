package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stevelan1995/wave-engine/pkg/cli/output"
	"github.com/stevelan1995/wave-engine/pkg/cli/waveengine"
)

// handlersCmd 列出服务端已注册的处理器
var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "列出已注册的处理器",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := waveengine.New(serverURL)
		resp, err := client.ListHandlers()
		if err != nil {
			output.Error("查询处理器失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(resp)
		}

		table := output.NewTable([]string{"NAME", "DESCRIPTION"})
		for _, h := range resp.Items {
			table.AddRow([]string{h.Name, h.Description})
		}
		table.Render()
		return nil
	},
}
