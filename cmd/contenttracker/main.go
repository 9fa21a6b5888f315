package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ContentTrackerAI/internal/classifier"
	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/internal/daemon"
	"ContentTrackerAI/internal/notify"
	"ContentTrackerAI/internal/probe"
	"ContentTrackerAI/internal/report"
	"ContentTrackerAI/internal/scheduler"
	"ContentTrackerAI/internal/server"
	"ContentTrackerAI/internal/singleton"
	"ContentTrackerAI/internal/storage"
	"ContentTrackerAI/internal/tray"
	"ContentTrackerAI/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	AppName    = "ContentTrackerAI"
	AppVersion = "1.2.0"
)

var (
	configFlag string

	rootCmd = &cobra.Command{
		Use:   "contenttracker",
		Short: "🔍 个人活动追踪与内容分类工具",
		Long: `ContentTracker AI - 个人活动追踪工具

周期性采样前台窗口与屏幕内容,经多阶段管线分类后记录到本地数据库,
并提供生产力统计、报表和 Web 管理界面。所有数据仅保存在本机。`,
		RunE: runDaemon,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "配置文件路径 (默认: <数据目录>/data/config.json)")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getAppDataDir 获取应用数据目录
// Windows: %LOCALAPPDATA%\ContentTrackerAI,其他平台使用当前工作目录
func getAppDataDir() string {
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		return filepath.Join(localAppData, AppName)
	}

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("❌ 无法获取工作目录: %v", err)
	}
	return workDir
}

// configPath 计算配置文件路径
func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return filepath.Join(getAppDataDir(), "data", "config.json")
}

// loadConfig 初始化配置管理器
func loadConfig() (*config.Manager, error) {
	return config.NewManager(configPath())
}

// runDaemon 运行守护进程(根命令)
func runDaemon(cmd *cobra.Command, args []string) error {
	// 单实例检测
	lock, err := singleton.Acquire(AppName)
	if err != nil {
		return err
	}
	defer lock.Close()

	configMgr, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to init config: %w", err)
	}
	fmt.Println("✅ 配置管理器初始化完成")

	// 确保必要的目录存在
	storageCfg := configMgr.GetStorage()
	requiredDirs := []string{
		storageCfg.DataDir,
		filepath.Join(storageCfg.DataDir, "screenshots"),
		filepath.Join(storageCfg.DataDir, "logs"),
		filepath.Join(storageCfg.DataDir, "reports"),
	}
	for _, dir := range requiredDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// 初始化日志系统
	logsDir := storageCfg.LogsDir
	if logsDir == "" {
		logsDir = filepath.Join(storageCfg.DataDir, "logs")
	}
	if err := logger.Init(logsDir, configMgr.GetGeneral().Debug); err != nil {
		log.Printf("⚠️ 日志系统初始化失败: %v, 使用控制台输出", err)
	} else {
		logger.Info("==================== ContentTracker %s 启动 ====================", AppVersion)
		logger.Info("数据目录: %s", storageCfg.DataDir)
	}
	defer logger.Close()

	// 初始化存储管理器
	storageMgr, err := storage.NewManager(storageCfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer storageMgr.Close()
	fmt.Println("✅ 存储管理器初始化完成")

	// 初始化分类管线并预热远程打分服务
	pipeline := classifier.NewPipeline(configMgr)
	pipeline.Warm(cmd.Context())
	fmt.Println("✅ 分类管线初始化完成")

	// 初始化守护进程
	d := daemon.New(
		configMgr,
		probe.NewWindowProbe(),
		probe.NewScreenGrabber(),
		probe.NewIdleProbe(),
		pipeline,
		storageMgr,
	)

	notifier := notify.NewNotifier(configMgr)
	d.SetNotifier(notifier)

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// 初始化任务调度器
	sched := scheduler.NewScheduler(configMgr, storageMgr, notifier)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// 配置文件热重载
	stopWatch, err := configMgr.Watch()
	if err != nil {
		logger.Warn("配置文件监视启动失败: %v", err)
	} else {
		defer stopWatch()
	}

	// 启动 Web 服务器
	serverCfg := configMgr.GetServer()
	var webServer *server.Server
	if serverCfg.Enabled {
		webServer = server.NewServer(configMgr, storageMgr, d, AppVersion)
		go func() {
			if err := webServer.Start(); err != nil {
				logger.Error("Web 服务器错误: %v", err)
			}
		}()
	}

	shutdown := func() {
		fmt.Println("📦 正在清理资源...")
		sched.Stop()
		if webServer != nil {
			webServer.Shutdown()
		}
		if err := d.Stop(); err != nil {
			logger.Warn("停止守护进程失败: %v", err)
		}
		fmt.Println("✅ 资源清理完成")
	}

	// 系统托盘模式: 托盘事件循环阻塞主协程
	if configMgr.GetUI().ShowTray {
		webURL := fmt.Sprintf("http://%s:%d", serverCfg.Host, serverCfg.Port)
		fmt.Println("🎯 启动系统托盘...")
		trayApp := tray.NewTrayApp(d, webURL, configMgr.GetUI().AutoOpenBrowser, shutdown)
		trayApp.Run()
		return nil
	}

	// 无托盘模式: 等待信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			logger.Info("收到 SIGHUP,重新加载配置")
			if err := configMgr.Reload(); err != nil {
				logger.Error("重新加载配置失败: %v", err)
			}
			continue
		}
		fmt.Println("\n🛑 收到退出信号...")
		break
	}

	shutdown()
	return nil
}

// statusCmd 查询运行中实例的状态
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "查询运行中实例的状态",
		RunE: func(cmd *cobra.Command, args []string) error {
			configMgr, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to init config: %w", err)
			}

			serverCfg := configMgr.GetServer()
			url := fmt.Sprintf("http://%s:%d/api/status", serverCfg.Host, serverCfg.Port)

			client := &http.Client{Timeout: 3 * time.Second}
			resp, err := client.Get(url)
			if err != nil {
				fmt.Println("❌ 守护进程未运行")
				return nil
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			var pretty map[string]interface{}
			if err := json.Unmarshal(body, &pretty); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}

// reportCmd 生成并打印日报
func reportCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "report [date]",
		Short: "生成指定日期的活动报表 (默认今天, 格式 YYYY-MM-DD)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configMgr, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to init config: %w", err)
			}

			storageMgr, err := storage.NewManager(configMgr.GetStorage().DataDir)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storageMgr.Close()

			date := time.Now()
			if len(args) > 0 {
				date, err = time.Parse("2006-01-02", args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
				}
			}

			generator := report.NewGenerator(storageMgr)
			dailyReport, err := generator.Daily(date)
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}

			generator.PrintText(dailyReport)

			if exportPath != "" {
				path, err := generator.ExportJSON(dailyReport, exportPath)
				if err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}
				fmt.Printf("📄 报表已导出: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "将报表导出为 JSON 文件")
	return cmd
}

// testCmd 执行一次采样并打印分类结果
func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "执行一次采样和分类,打印结果后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			configMgr, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to init config: %w", err)
			}

			fmt.Println("🔍 探测前台窗口...")
			windowProbe := probe.NewWindowProbe()
			window, err := windowProbe.ActiveWindow(cmd.Context())
			if err != nil {
				return fmt.Errorf("window probe failed: %w", err)
			}
			fmt.Printf("  应用: %s\n  标题: %s\n  进程: %s\n",
				window.AppName, window.WindowTitle, window.ProcessName)

			fmt.Println("📸 截取屏幕...")
			capture, err := probe.NewScreenGrabber().Capture()
			if err != nil {
				return fmt.Errorf("screen capture failed: %w", err)
			}
			bounds := capture.Image.Bounds()
			fmt.Printf("  分辨率: %dx%d\n", bounds.Dx(), bounds.Dy())

			fmt.Println("🧠 执行分类管线...")
			pipeline := classifier.NewPipeline(configMgr)
			result := pipeline.Classify(cmd.Context(), capture.Image, window)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// versionCmd 打印版本信息
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", AppName, AppVersion)
		},
	}
}
