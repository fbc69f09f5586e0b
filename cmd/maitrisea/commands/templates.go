package commands

import (
	"strconv"
	"strings"

	"github.com/maitrisea/backend/internal/pkg/printer"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "列出文档模板与时间线、干系人、分包模板",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return printer.Error("无法打开工作区", err.Error())
			}
			defer a.Close()

			docs, err := a.Catalog.ListDocumentTemplates(ctx, activeOnly)
			if err != nil {
				return printer.Error("读取文档模板失败", err.Error())
			}
			timelines, err := a.Catalog.ListTimelineTemplates(ctx)
			if err != nil {
				return printer.Error("读取时间线模板失败", err.Error())
			}
			stakeholders, err := a.Catalog.ListStakeholderTemplates(ctx)
			if err != nil {
				return printer.Error("读取干系人模板失败", err.Error())
			}
			lots, err := a.Catalog.ListTradeLotTemplates(ctx)
			if err != nil {
				return printer.Error("读取分包模板失败", err.Error())
			}

			out := cmd.OutOrStdout()
			var rows [][]string
			for _, t := range docs {
				rows = append(rows, []string{
					t.ID,
					t.TemplateName,
					string(t.TemplateType),
					string(t.AnalysisStatus),
					strconv.FormatBool(t.IsActive),
					strings.Join(t.Variables, ", "),
				})
			}
			printer.Table(out, []string{"ID", "Document", "Type", "Analyse", "Actif", "Variables"}, rows)

			rows = nil
			for _, t := range timelines {
				rows = append(rows, []string{t.ID, "timeline", t.TemplateName, strconv.Itoa(len(t.Items))})
			}
			for _, t := range stakeholders {
				rows = append(rows, []string{t.ID, "stakeholders", t.TemplateName, strconv.Itoa(len(t.Roles))})
			}
			for _, t := range lots {
				rows = append(rows, []string{t.ID, "lots", t.TemplateName, strconv.Itoa(len(t.Lots))})
			}
			printer.Table(out, []string{"ID", "Catalogue", "Nom", "Éléments"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "只列出目录中启用的文档模板")
	return cmd
}
