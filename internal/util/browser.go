package util

import (
	"os/exec"
	"runtime"
)

// browserCommands 按平台列出打开 URL 的命令，依次尝试
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		cmds := [][]string{{"xdg-open", url}}
		for _, b := range []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"} {
			cmds = append(cmds, []string{b, url})
		}
		return cmds
	}
}

// OpenBrowser 用默认浏览器打开 url，主方式失败时尝试备选命令
func OpenBrowser(url string) error {
	var firstErr error
	for _, args := range browserCommands(runtime.GOOS, url) {
		err := exec.Command(args[0], args[1:]...).Start()
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
