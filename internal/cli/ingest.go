package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/exporter"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
)

// headRows 控制台预览的行数
const headRows = 5

// IngestOptions ingest 命令参数
type IngestOptions struct {
	Dir  string
	Out  string
	XLSX bool
	DB   bool
}

// NewIngestCommand 创建 ingest 命令
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "导入工作簿并输出规范化 CSV",
		Long: `导入 SPINS 工作簿，输出规范化行。

未指定文件时扫描 --dir 下的 .xlsb/.xlsx/.xlsm/.xls/.csv 文件（按文件名排序）。
--db 同时写入 SQLite（按文件内容去重）。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "扫描目录 (默认为配置中的数据目录)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "CSV 输出路径 (默认为 <数据目录>/exports/tidy.csv)")
	cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "同时输出同名 .xlsx")
	cmd.Flags().BoolVar(&opts.DB, "db", false, "写入 SQLite")

	return cmd
}

func runIngest(rootOpts *RootOptions, opts *IngestOptions, paths []string, out io.Writer) error {
	a, _, err := loadApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(paths) == 0 {
		dir := opts.Dir
		if dir == "" {
			dir = a.Config.DataDir()
		}
		paths, err = importer.DiscoverFiles(dir)
		if err != nil {
			return err
		}
	}

	coordinator := a.Coordinator()
	var batch *importer.BatchResult
	if opts.DB {
		st, err := a.Store()
		if err != nil {
			return err
		}
		report := coordinator.ImportToStore(st, paths)
		batch = report.Batch
		fmt.Fprintf(out, "写入数据库: %d 行, 跳过 %d 行\n", report.Stats.Written, report.Stats.Skipped)
	} else {
		batch = coordinator.IngestAll(paths)
	}

	outPath := opts.Out
	if outPath == "" {
		outPath = filepath.Join(a.Config.DataDir(), "exports", "tidy.csv")
	}
	if err := exporter.WriteCSVFile(outPath, batch.Rows); err != nil {
		return err
	}
	if opts.XLSX {
		xlsxPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".xlsx"
		if err := exporter.WriteXLSX(xlsxPath, batch.Rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "已写出 %s\n", xlsxPath)
	}

	printBatch(out, batch)
	fmt.Fprintf(out, "已写出 %s\n", outPath)
	return nil
}

// printBatch 输出每个文件的状态、总行数和前几行
func printBatch(out io.Writer, batch *importer.BatchResult) {
	for _, f := range batch.Files {
		line := fmt.Sprintf("  [%s] %s", f.Status, f.Name)
		if f.Rows > 0 {
			line += fmt.Sprintf(" rows=%d", f.Rows)
		}
		if f.Report != nil && f.Report.ImportedSheet != "" {
			line += " sheet=" + f.Report.ImportedSheet
		}
		if f.Error != "" {
			line += " error=" + f.Error
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "共 %d 行，来自 %d/%d 个文件\n", len(batch.Rows), batch.Imported(), len(batch.Files))

	head := batch.Rows
	if len(head) > headRows {
		head = head[:headRows]
	}
	if len(head) > 0 {
		_ = exporter.WriteCSV(out, head)
	}
}
