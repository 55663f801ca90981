// main.go - 安安的素描本聊天框 桌面入口
// 命令行解析（cobra）与 Wails 窗口配置

package main

import (
	"embed"
	"fmt"
	"os"

	"anan-sketchbook/config"
	"anan-sketchbook/internal/tray/icon"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// 版本信息
var (
	Version   = "1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const appTitle = "安安的素描本聊天框"

// 嵌入前端资源
//
//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "anan-sketchbook",
		Short: appTitle,
		Long: `安安的素描本聊天框：按下全局热键后把剪贴板图片贴进聊天框。
不带子命令时启动设置窗口；关闭窗口可以选择隐藏到系统托盘。`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(configPath, logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径（不存在时使用内置默认配置）")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "覆盖配置文件中的日志级别 (debug|info|warn|error)")

	rootCmd.AddCommand(newCheckConfigCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, appTitle)
			fmt.Fprintf(out, "Version: %s\n", Version)
			fmt.Fprintf(out, "Commit: %s\n", Commit)
			fmt.Fprintf(out, "Built: %s\n", BuildTime)
		},
	}
}

func newCheckConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "校验配置文件并打印生效的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, found, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if found {
				fmt.Fprintf(out, "✅ 配置文件有效: %s\n", *configPath)
			} else {
				fmt.Fprintf(out, "ℹ️ 未找到 %s，使用内置默认配置\n", *configPath)
			}
			fmt.Fprintf(out, "  hotkey:                %s\n", cfg.Hotkey)
			fmt.Fprintf(out, "  delay:                 %g\n", cfg.Delay)
			fmt.Fprintf(out, "  text_box_topleft:      %s\n", cfg.TextBoxTopLeft)
			fmt.Fprintf(out, "  image_box_bottomright: %s\n", cfg.ImageBoxBottomRight)
			fmt.Fprintf(out, "  auto_paste_image:      %t\n", cfg.AutoPasteImage)
			fmt.Fprintf(out, "  auto_send_image:       %t\n", cfg.AutoSendImage)
			fmt.Fprintf(out, "  block_hotkey:          %t\n", cfg.BlockHotkey)
			fmt.Fprintf(out, "  logging.level:         %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  tray.disabled:         %t\n", cfg.Tray.Disabled)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  metrics.listen:        %s\n", cfg.Metrics.Listen)
			}
			return nil
		},
	}
}

func runGUI(configPath, logLevel string) error {
	app := NewApp(configPath, logLevel)
	appIcon := icon.Default()

	return wails.Run(&options.App{
		Title:     appTitle,
		Width:     600,
		Height:    450,
		MinWidth:  400,
		MinHeight: 300,

		// 资源服务器
		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		BackgroundColour: &options.RGBA{R: 243, G: 243, B: 243, A: 1},

		// 生命周期回调
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,

		// 绑定到前端的方法
		Bind: []interface{}{
			app,
		},

		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   appTitle,
				Message: fmt.Sprintf("版本 %s", Version),
				Icon:    appIcon,
			},
		},

		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},

		Linux: &linux.Options{
			Icon:                appIcon,
			WindowIsTranslucent: false,
		},
	})
}
