package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/app"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/config"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand 创建 velocity 根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "velocity",
		Short:         "SPINS 零售数据表头识别与导入",
		Long:          "把 SPINS 导出的数据透视表工作簿识别为规范化的零售事实行，并可写入 SQLite。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "配置文件路径 (默认为可执行文件旁的 config.toml)")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewSuggestCommand(opts))
	cmd.AddCommand(NewProfilesCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))

	return cmd
}

// loadApp 加载配置并装配运行时
func loadApp(opts *RootOptions) (*app.App, config.LoadConfigInfo, error) {
	cfg, info, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, info, fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, info, err
	}
	return a, info, nil
}
