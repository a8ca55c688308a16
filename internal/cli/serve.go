package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/server"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/util"
)

// ServeOptions serve 命令参数
type ServeOptions struct {
	Port int
	Dev  bool
	Open bool
}

// NewServeCommand 创建 serve 命令
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动映射确认与导入的 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "启动后打开浏览器")

	return cmd
}

func runServe(rootOpts *RootOptions, opts *ServeOptions, out io.Writer) error {
	a, info, err := loadApp(rootOpts)
	if err != nil {
		return err
	}

	cfg := a.Config
	if opts.Port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.Port
	}
	if opts.Dev {
		cfg.Server.DevMode = true
	}

	srv, err := server.NewServer(a)
	if err != nil {
		_ = a.Close()
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	if opts.Open {
		fmt.Fprintf(out, "正在打开浏览器: %s\n", url)
		if err := util.OpenBrowser(url); err != nil {
			fmt.Fprintf(out, "无法自动打开浏览器，请手动访问: %s\n", url)
		}
	}

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		return err
	case <-quit:
	}

	fmt.Fprintln(out, "正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
