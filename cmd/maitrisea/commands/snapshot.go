package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/printer"
	"github.com/maitrisea/backend/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出工作区快照（json 或 yaml）",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return printer.Error("不支持的导出格式", fmt.Sprintf("--format 只能是 json 或 yaml，收到 %q", format))
			}
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return printer.Error("无法打开工作区", err.Error())
			}
			defer a.Close()

			var data string
			err = a.Workspace.View(ctx, func(snap *model.Snapshot) error {
				if format == "yaml" {
					data = utils.ToYAML(snap)
				} else {
					data = utils.ToJSON(snap)
				}
				return nil
			})
			if err != nil {
				return printer.Error("读取快照失败", err.Error())
			}
			if data == "" {
				return printer.Error("序列化快照失败", "")
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), data)
				return err
			}
			if err := os.WriteFile(output, []byte(data), 0644); err != nil {
				return printer.Error("写入文件失败", err.Error())
			}
			printer.Success(cmd.ErrOrStderr(), "快照已导出到 %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "导出格式：json 或 yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认标准输出")
	return cmd
}

// decodeSnapshot 按扩展名解析快照，.yaml/.yml 用 YAML，其余按 JSON
func decodeSnapshot(path string, data []byte) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	return snap, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "用快照文件整体替换工作区（缺失的集合视为空）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return printer.Error("读取文件失败", err.Error())
			}
			snap, err := decodeSnapshot(args[0], data)
			if err != nil {
				return printer.Error("快照格式错误", err.Error())
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return printer.Error("无法打开工作区", err.Error())
			}
			defer a.Close()

			if err := a.Workspace.Replace(ctx, snap); err != nil {
				return printer.Error("保存快照失败", err.Error())
			}
			printer.Success(cmd.OutOrStdout(), "已导入 %d 个项目、%d 个文档模板\n", len(snap.Projects), len(snap.Templates))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "文档模板目录为空时写入预置模板与默认偏好",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return printer.Error("无法打开工作区", err.Error())
			}
			defer a.Close()

			if err := a.Seed(ctx, owner); err != nil {
				return printer.Error("写入预置模板失败", err.Error())
			}
			printer.Success(cmd.OutOrStdout(), "预置模板已就绪\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "默认偏好所属用户，默认使用配置中的用户")
	return cmd
}
