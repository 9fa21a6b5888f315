package classifier

import (
	"encoding/json"
	"os"
	"strings"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
)

// AppRule 应用分类规则
type AppRule struct {
	Category string `json:"category"`
	Activity string `json:"activity"`
	Name     string `json:"name"`
}

// defaultAppRules 内置应用分类表(进程名/WM_CLASS 子串匹配)
var defaultAppRules = map[string]AppRule{
	// 代码编辑器 / IDE
	"code":           {"coding", "productive", "VS Code"},
	"code-oss":       {"coding", "productive", "VS Code OSS"},
	"codium":         {"coding", "productive", "VSCodium"},
	"sublime_text":   {"coding", "productive", "Sublime Text"},
	"atom":           {"coding", "productive", "Atom"},
	"idea":           {"coding", "productive", "IntelliJ IDEA"},
	"pycharm":        {"coding", "productive", "PyCharm"},
	"webstorm":       {"coding", "productive", "WebStorm"},
	"android-studio": {"coding", "productive", "Android Studio"},
	"eclipse":        {"coding", "productive", "Eclipse"},
	"vim":            {"coding", "productive", "Vim"},
	"nvim":           {"coding", "productive", "Neovim"},
	"emacs":          {"coding", "productive", "Emacs"},
	"gedit":          {"text_editing", "productive", "gedit"},
	"kate":           {"text_editing", "productive", "Kate"},

	// 终端
	"gnome-terminal": {"terminal", "productive", "Terminal"},
	"konsole":        {"terminal", "productive", "Konsole"},
	"xterm":          {"terminal", "productive", "XTerm"},
	"alacritty":      {"terminal", "productive", "Alacritty"},
	"kitty":          {"terminal", "productive", "Kitty"},
	"tilix":          {"terminal", "productive", "Tilix"},
	"terminator":     {"terminal", "productive", "Terminator"},
	"wezterm":        {"terminal", "productive", "WezTerm"},

	// 浏览器
	"firefox":        {"browser", "neutral", "Firefox"},
	"chrome":         {"browser", "neutral", "Chrome"},
	"chromium":       {"browser", "neutral", "Chromium"},
	"google-chrome":  {"browser", "neutral", "Google Chrome"},
	"brave":          {"browser", "neutral", "Brave"},
	"opera":          {"browser", "neutral", "Opera"},
	"vivaldi":        {"browser", "neutral", "Vivaldi"},
	"microsoft-edge": {"browser", "neutral", "Edge"},
	"epiphany":       {"browser", "neutral", "GNOME Web"},
	"librewolf":      {"browser", "neutral", "LibreWolf"},
	"qutebrowser":    {"browser", "neutral", "qutebrowser"},

	// 办公
	"libreoffice": {"office", "productive", "LibreOffice"},
	"soffice":     {"office", "productive", "LibreOffice"},
	"onlyoffice":  {"office", "productive", "OnlyOffice"},
	"wps":         {"office", "productive", "WPS Office"},

	// 文档查看
	"evince":  {"document_viewer", "neutral", "Document Viewer"},
	"okular":  {"document_viewer", "neutral", "Okular"},
	"zathura": {"document_viewer", "neutral", "Zathura"},

	// 文件管理
	"nautilus": {"file_manager", "neutral", "Files"},
	"dolphin":  {"file_manager", "neutral", "Dolphin"},
	"thunar":   {"file_manager", "neutral", "Thunar"},
	"nemo":     {"file_manager", "neutral", "Nemo"},
	"ranger":   {"file_manager", "neutral", "Ranger"},

	// 视频播放器
	"vlc":       {"video_player", "entertainment", "VLC"},
	"mpv":       {"video_player", "entertainment", "mpv"},
	"totem":     {"video_player", "entertainment", "Videos"},
	"celluloid": {"video_player", "entertainment", "Celluloid"},
	"smplayer":  {"video_player", "entertainment", "SMPlayer"},
	"kodi":      {"media_center", "entertainment", "Kodi"},

	// 音乐播放器
	"spotify":   {"music", "entertainment", "Spotify"},
	"rhythmbox": {"music", "entertainment", "Rhythmbox"},
	"audacious": {"music", "entertainment", "Audacious"},
	"cmus":      {"music", "entertainment", "cmus"},

	// 图像
	"eog":      {"image_viewer", "neutral", "Image Viewer"},
	"feh":      {"image_viewer", "neutral", "feh"},
	"gimp":     {"image_editing", "productive", "GIMP"},
	"inkscape": {"design", "productive", "Inkscape"},
	"krita":    {"design", "productive", "Krita"},

	// 通讯
	"slack":            {"communication", "neutral", "Slack"},
	"discord":          {"communication", "social_media", "Discord"},
	"telegram-desktop": {"communication", "social_media", "Telegram"},
	"signal-desktop":   {"communication", "neutral", "Signal"},
	"element":          {"communication", "neutral", "Element"},
	"thunderbird":      {"email", "productive", "Thunderbird"},
	"evolution":        {"email", "productive", "Evolution"},
	"zoom":             {"video_call", "productive", "Zoom"},
	"teams":            {"video_call", "productive", "Teams"},

	// 游戏
	"steam":     {"gaming", "gaming", "Steam"},
	"lutris":    {"gaming", "gaming", "Lutris"},
	"heroic":    {"gaming", "gaming", "Heroic Launcher"},
	"retroarch": {"gaming", "gaming", "RetroArch"},
	"minecraft": {"gaming", "gaming", "Minecraft"},

	// 系统工具
	"gnome-control-center": {"settings", "neutral", "Settings"},
	"gnome-system-monitor": {"system", "neutral", "System Monitor"},
	"htop":                 {"system", "neutral", "htop"},
	"btop":                 {"system", "neutral", "btop"},

	// 笔记
	"obsidian": {"notes", "productive", "Obsidian"},
	"notion":   {"notes", "productive", "Notion"},
	"joplin":   {"notes", "productive", "Joplin"},
	"zettlr":   {"notes", "productive", "Zettlr"},

	// 创作工具
	"blender":  {"3d_modeling", "productive", "Blender"},
	"kdenlive": {"video_editing", "productive", "Kdenlive"},
	"shotcut":  {"video_editing", "productive", "Shotcut"},
	"audacity": {"audio_editing", "productive", "Audacity"},
}

// AppDetection 应用检测结果
type AppDetection struct {
	AppName       string
	Category      string
	ActivityType  models.ActivityType
	IsBrowser     bool
	IsMediaPlayer bool
	IsIDE         bool
	IsTerminal    bool
	IsGame        bool
	Confidence    float64
}

// AppDetector 应用检测器
// 按进程名和 WM_CLASS 匹配内置规则表,可通过 JSON 文件追加自定义规则
type AppDetector struct {
	rules map[string]AppRule
}

// NewAppDetector 创建应用检测器
// rulesPath 非空且文件存在时加载自定义规则并覆盖同名内置规则
func NewAppDetector(rulesPath string) *AppDetector {
	rules := make(map[string]AppRule, len(defaultAppRules))
	for k, v := range defaultAppRules {
		rules[k] = v
	}

	if rulesPath != "" {
		if data, err := os.ReadFile(rulesPath); err == nil {
			var custom map[string]AppRule
			if err := json.Unmarshal(data, &custom); err != nil {
				logger.Error("加载自定义应用规则失败: %v", err)
			} else {
				for k, v := range custom {
					rules[k] = v
				}
				logger.Info("已加载 %d 条自定义应用规则", len(custom))
			}
		}
	}

	return &AppDetector{rules: rules}
}

// Detect 检测并分类应用
func (d *AppDetector) Detect(processName, wmClass, windowTitle string) *AppDetection {
	result := &AppDetection{
		Category:     "unknown",
		ActivityType: models.ActivityNeutral,
		Confidence:   0.5,
	}

	processLower := strings.ToLower(processName)
	wmClassLower := strings.ToLower(wmClass)

	for key, rule := range d.rules {
		if (processLower != "" && strings.Contains(processLower, key)) ||
			(wmClassLower != "" && strings.Contains(wmClassLower, key)) {
			result.AppName = rule.Name
			result.Category = rule.Category
			result.ActivityType = models.ActivityType(rule.Activity)
			result.Confidence = 0.9
			break
		}
	}

	// 未匹配时从进程名推测应用名
	if result.AppName == "" {
		result.AppName = guessAppName(processName, wmClass)
		result.Confidence = 0.5
	}

	result.IsBrowser = result.Category == "browser"
	result.IsMediaPlayer = result.Category == "video_player" ||
		result.Category == "music" || result.Category == "media_center"
	result.IsIDE = result.Category == "coding"
	result.IsTerminal = result.Category == "terminal"
	result.IsGame = result.Category == "gaming"

	if windowTitle != "" {
		d.enhanceWithTitle(result, windowTitle)
	}

	return result
}

// enhanceWithTitle 根据窗口标题修正检测结果
func (d *AppDetector) enhanceWithTitle(result *AppDetection, title string) {
	titleLower := strings.ToLower(title)

	// 标题中出现源码文件扩展名视为开发环境
	for _, ext := range []string{".py", ".js", ".ts", ".java", ".cpp", ".c", ".go", ".rs"} {
		if strings.Contains(titleLower, ext) {
			result.Category = "coding"
			result.ActivityType = models.ActivityProductive
			result.IsIDE = true
			break
		}
	}

	for _, word := range []string{"documentation", "docs", "tutorial", "learn", "course"} {
		if strings.Contains(titleLower, word) {
			result.ActivityType = models.ActivityEducational
			break
		}
	}
}

// IsProductiveApp 快速判断应用是否属于生产力类
func (d *AppDetector) IsProductiveApp(processName string) bool {
	return d.Detect(processName, "", "").ActivityType == models.ActivityProductive
}

func guessAppName(processName, wmClass string) string {
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "-", " ")
		s = strings.ReplaceAll(s, "_", " ")
		return strings.Title(s)
	}
	if wmClass != "" {
		// WM_CLASS 通常比进程名更干净
		return clean(wmClass)
	}
	if processName != "" {
		return clean(processName)
	}
	return "Unknown"
}
