package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/config"
)

// NewInitCommand 创建 init 命令：写出默认配置
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "写出默认 config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写出 %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有配置")

	return cmd
}
