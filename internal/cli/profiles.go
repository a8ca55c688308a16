package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
)

// NewProfilesCommand 创建 profiles 命令组
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "管理人工确认的列映射",
	}

	cmd.AddCommand(newProfilesListCommand(rootOpts))
	cmd.AddCommand(newProfilesSaveCommand(rootOpts))

	return cmd
}

func newProfilesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部已保存映射",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()
			return writeJSON(cmd.OutOrStdout(), a.Profiles.Load())
		},
	}
}

type profilesSaveOptions struct {
	File  string
	Sheet string
}

func newProfilesSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &profilesSaveOptions{}

	cmd := &cobra.Command{
		Use:   "save role=header...",
		Short: "为工作簿的某个 sheet 保存映射",
		Long: `读取 --file 指定工作簿的表头，按 role=header 参数保存映射。

例：velocity profiles save --file "SPINS ending 01-26-25.xlsx" --sheet Ret_Brand_Pivot \
  "chain=Row Labels" "units=Latest 4 Wks | Sum of Units" "dollars=Sum of Dollars"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesSave(rootOpts, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "工作簿路径")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "sheet 名称 (默认取第一个候选 sheet)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runProfilesSave(rootOpts *RootOptions, opts *profilesSaveOptions, args []string, out io.Writer) error {
	raw, err := parseAssignments(args)
	if err != nil {
		return err
	}

	a, _, err := loadApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Coordinator().Suggest(importer.SuggestRequest{Path: opts.File, Sheet: opts.Sheet})
	if err != nil {
		return err
	}

	mapping, err := profile.BuildMapping(raw, res.Headers)
	if err != nil {
		return err
	}
	if err := a.Profiles.Put(res.ProfileKey, mapping); err != nil {
		return err
	}

	fmt.Fprintf(out, "已保存 %s / %s -> %s\n", filepath.Base(opts.File), res.Sheet, res.ProfileKey)
	return nil
}

// parseAssignments 解析 role=header 参数；header 中可以包含 "="
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		role, header, ok := strings.Cut(arg, "=")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			return nil, fmt.Errorf("invalid assignment %q: want role=header", arg)
		}
		out[role] = strings.TrimSpace(header)
	}
	return out, nil
}
