// Package printer 命令行彩色输出与表格
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// Success 绿色输出，带 ✓ 前缀
func Success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format, a...)
}

// Warning 黄色输出
func Warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠  "+format, a...)
}

// Error 在 stderr 输出标题与说明，返回供 cobra 使用的简单错误
func Error(title, explanation string) error {
	red.Fprintf(os.Stderr, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}
	return fmt.Errorf("%s", title)
}

// Table 以表格形式输出
func Table(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}
