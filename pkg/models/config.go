package models

// AppConfig 应用程序配置
type AppConfig struct {
	// 基础配置
	General GeneralConfig `json:"general"`

	// 采样/监控配置
	Monitoring MonitoringConfig `json:"monitoring"`

	// 内容检测配置
	Detection DetectionConfig `json:"detection"`

	// 隐私配置
	Privacy PrivacyConfig `json:"privacy"`

	// 存储配置
	Storage StorageConfig `json:"storage"`

	// 服务器配置
	Server ServerConfig `json:"server"`

	// 通知配置
	Notifications NotificationsConfig `json:"notifications"`

	// 界面配置
	UI UIConfig `json:"ui"`
}

// GeneralConfig 基础配置
type GeneralConfig struct {
	Debug bool `json:"debug"` // 调试模式（日志同时输出到控制台）
}

// MonitoringConfig 采样配置
type MonitoringConfig struct {
	Interval           int  `json:"interval"`            // 采样间隔（秒）
	IdleThreshold      int  `json:"idle_threshold"`      // 空闲判定阈值（秒）
	QueueCapacity      int  `json:"queue_capacity"`      // 分析队列容量
	SaveScreenshots    bool `json:"save_screenshots"`    // 是否保存截图文件（默认关闭）
	ScreenshotQuality  int  `json:"screenshot_quality"`  // JPEG 质量 (1-100)
	ScreenshotMaxWidth int  `json:"screenshot_max_width"` // 保存截图的最大宽度（0 表示不缩放）
}

// DetectionConfig 内容检测配置
type DetectionConfig struct {
	UseURL   bool `json:"use_url_analysis"` // 启用 URL 分析
	UseOCR   bool `json:"use_ocr"`          // 启用 OCR 文本分析
	UseImage bool `json:"use_image_analysis"` // 启用图像启发式分析
	UseCLIP  bool `json:"use_clip"`         // 启用 CLIP 嵌入分类
	UseNSFW  bool `json:"use_nsfw"`         // 启用 NSFW 检测
	UseRules bool `json:"use_rules"`        // 启用规则兜底分类

	SkipUnchanged bool `json:"skip_unchanged"` // 窗口未变化时跳过截屏

	OCRTimeout    int `json:"ocr_timeout"`     // OCR 超时（秒）
	MinTextLength int `json:"min_text_length"` // 参与分析的最小文本长度

	CLIPEndpoint  string  `json:"clip_endpoint"`  // CLIP 分类服务地址（空则禁用）
	NSFWEndpoint  string  `json:"nsfw_endpoint"`  // NSFW 检测服务地址（空则禁用）
	NSFWThreshold float64 `json:"nsfw_threshold"` // NSFW 判定阈值
}

// PrivacyConfig 隐私配置
type PrivacyConfig struct {
	ExcludedApps          []string `json:"excluded_apps"`           // 排除的应用名（子串匹配，不区分大小写）
	ExcludedTitleKeywords []string `json:"excluded_title_keywords"` // 排除的标题关键字
	RetentionDays         int      `json:"data_retention_days"`     // 数据保留天数
}

// StorageConfig 存储配置
type StorageConfig struct {
	DataDir        string `json:"data_dir"`        // 数据目录
	ScreenshotsDir string `json:"screenshots_dir"` // 截图存储目录（空则为 data_dir/screenshots）
	LogsDir        string `json:"logs_dir"`        // 日志目录（空则为 data_dir/logs）
}

// ServerConfig Web 服务器配置
type ServerConfig struct {
	Enabled bool   `json:"enabled"` // 是否启用 Web API
	Host    string `json:"host"`    // 主机地址
	Port    int    `json:"port"`    // 端口号
}

// NotificationsConfig 通知配置
type NotificationsConfig struct {
	Enabled              bool   `json:"enabled"`               // 通知总开关
	DistractionAlerts    bool   `json:"distraction_alerts"`    // 分心提醒
	NSFWAlerts           bool   `json:"nsfw_alerts"`           // NSFW 提醒
	DistractionThreshold int    `json:"distraction_threshold"` // 连续分心判定阈值（秒）
	QuietHoursEnabled    bool   `json:"quiet_hours_enabled"`   // 免打扰时段开关
	QuietHoursStart      string `json:"quiet_hours_start"`     // 免打扰开始 "22:00"
	QuietHoursEnd        string `json:"quiet_hours_end"`       // 免打扰结束 "08:00"
}

// UIConfig 界面配置
type UIConfig struct {
	ShowTray        bool `json:"show_tray"`         // 显示系统托盘
	AutoOpenBrowser bool `json:"auto_open_browser"` // 启动时自动打开浏览器
}

// DefaultConfig 返回默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		General: GeneralConfig{
			Debug: false,
		},
		Monitoring: MonitoringConfig{
			Interval:           30,
			IdleThreshold:      300,
			QueueCapacity:      100,
			SaveScreenshots:    false,
			ScreenshotQuality:  85,
			ScreenshotMaxWidth: 1280,
		},
		Detection: DetectionConfig{
			UseURL:        true,
			UseOCR:        true,
			UseImage:      true,
			UseCLIP:       false,
			UseNSFW:       false,
			UseRules:      true,
			SkipUnchanged: true,
			OCRTimeout:    5,
			MinTextLength: 10,
			NSFWThreshold: 0.5,
		},
		Privacy: PrivacyConfig{
			ExcludedApps:          []string{"keepassxc", "bitwarden", "1password", "gnome-keyring"},
			ExcludedTitleKeywords: []string{"password", "private", "incognito", "secret"},
			RetentionDays:         90,
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    9528,
		},
		Notifications: NotificationsConfig{
			Enabled:              true,
			DistractionAlerts:    true,
			NSFWAlerts:           true,
			DistractionThreshold: 1800,
			QuietHoursEnabled:    false,
			QuietHoursStart:      "22:00",
			QuietHoursEnd:        "08:00",
		},
		UI: UIConfig{
			ShowTray:        false,
			AutoOpenBrowser: false,
		},
	}
}
