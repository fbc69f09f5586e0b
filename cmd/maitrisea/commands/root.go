package commands

import (
	"context"
	"flag"

	"github.com/maitrisea/backend/config"
	"github.com/maitrisea/backend/internal/app"
	"github.com/spf13/cobra"
)

// openApp 按配置打开工作区，测试中替换
var openApp = func(ctx context.Context) (*app.App, error) {
	return app.New(ctx, config.GetConfig())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "maitrisea",
		Short: "Maitrisea 项目工作区管理工具",
		Long: `maitrisea 直接读写工作区快照存储（按 CONFIG_PATH 或环境变量配置），
用于查看项目与模板、导出/导入快照、写入预置模板。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(
		newProjectsCmd(),
		newTemplatesCmd(),
		newExportCmd(),
		newImportCmd(),
		newSeedCmd(),
	)
	return root
}

// Execute 执行根命令，klog 参数通过 goFlags 一并解析
func Execute(goFlags *flag.FlagSet) error {
	root := newRootCmd()
	if goFlags != nil {
		root.PersistentFlags().AddGoFlagSet(goFlags)
	}
	return root.Execute()
}
