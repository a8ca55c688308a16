package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
)

// NewSuggestCommand 创建 suggest 命令
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "输出表头、建议映射与已保存映射",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(rootOpts, args[0], sheet, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet 名称 (默认取第一个候选 sheet)")

	return cmd
}

func runSuggest(rootOpts *RootOptions, path, sheet string, out io.Writer) error {
	a, _, err := loadApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Coordinator().Suggest(importer.SuggestRequest{Path: path, Sheet: sheet})
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
