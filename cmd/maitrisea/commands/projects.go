package commands

import (
	"strconv"

	"github.com/maitrisea/backend/internal/pkg/printer"
	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "列出项目",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return printer.Error("无法打开工作区", err.Error())
			}
			defer a.Close()

			projects, err := a.Projects.List(ctx)
			if err != nil {
				return printer.Error("读取项目失败", err.Error())
			}
			var rows [][]string
			for _, p := range projects {
				fields, err := a.Fields.ListFields(ctx, p.ID)
				if err != nil {
					return printer.Error("读取项目字段失败", err.Error())
				}
				timeline, err := a.Timeline.Timeline(ctx, p.ID)
				if err != nil {
					return printer.Error("读取时间线失败", err.Error())
				}
				rows = append(rows, []string{
					p.ID,
					p.ProjectName,
					p.ClientName,
					string(p.Category),
					p.StatusGlobal,
					strconv.Itoa(len(timeline)),
					strconv.Itoa(len(fields)),
				})
			}

			if len(rows) == 0 {
				printer.Warning(cmd.OutOrStdout(), "工作区中没有项目\n")
				return nil
			}
			printer.Table(cmd.OutOrStdout(), []string{"ID", "Projet", "Client", "Catégorie", "Statut", "Timeline", "Champs"}, rows)
			return nil
		},
	}
}
