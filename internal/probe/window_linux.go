//go:build linux
// +build linux

package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"
)

// WindowProbe Linux 前台窗口探测器
// X11 下使用 xdotool/xprop,Wayland 下尝试 swaymsg 和 hyprctl
type WindowProbe struct {
	displayServer string
}

// NewWindowProbe 创建窗口探测器
func NewWindowProbe() *WindowProbe {
	p := &WindowProbe{
		displayServer: detectDisplayServer(),
	}
	logger.Info("窗口探测器初始化完成: %s", p.displayServer)
	return p
}

// detectDisplayServer 检测显示服务器类型
func detectDisplayServer() string {
	session := strings.ToLower(os.Getenv("XDG_SESSION_TYPE"))
	switch session {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "wayland"
	}
	if os.Getenv("DISPLAY") != "" {
		return "x11"
	}
	return "unknown"
}

// ActiveWindow 获取当前前台窗口快照
func (p *WindowProbe) ActiveWindow(ctx context.Context) (*models.WindowSnapshot, error) {
	var snap *models.WindowSnapshot
	var err error

	if p.displayServer == "wayland" {
		snap, err = p.activeWindowWayland(ctx)
	} else {
		snap, err = p.activeWindowX11(ctx)
	}

	if err != nil || snap == nil {
		// 探测失败时返回未知窗口,不中断采样
		logger.Debug("窗口探测失败: %v", err)
		snap = &models.WindowSnapshot{AppName: "Unknown"}
	}

	snap.Timestamp = time.Now()
	return snap, nil
}

var wmClassRe = regexp.MustCompile(`"([^"]+)"`)

// activeWindowX11 通过 xdotool/xprop 获取 X11 前台窗口
func (p *WindowProbe) activeWindowX11(ctx context.Context) (*models.WindowSnapshot, error) {
	out, err := runCommand(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return nil, fmt.Errorf("xdotool getactivewindow failed: %w", err)
	}

	windowID, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window id %q: %w", out, err)
	}

	snap := &models.WindowSnapshot{WindowID: windowID}

	if title, err := runCommand(ctx, "xdotool", "getwindowname", out); err == nil {
		snap.WindowTitle = title
	}

	if pidStr, err := runCommand(ctx, "xdotool", "getwindowpid", out); err == nil {
		if pid, err := strconv.Atoi(pidStr); err == nil {
			snap.ProcessID = pid
			snap.ProcessName = processNameFromPID(pid)
		}
	}

	if propOut, err := runCommand(ctx, "xprop", "-id", out, "WM_CLASS"); err == nil {
		if m := wmClassRe.FindStringSubmatch(propOut); m != nil {
			snap.WMClass = m[1]
		}
	}

	fillAppInfo(snap)
	return snap, nil
}

// activeWindowWayland 获取 Wayland 前台窗口,依次尝试 Sway 和 Hyprland
func (p *WindowProbe) activeWindowWayland(ctx context.Context) (*models.WindowSnapshot, error) {
	if snap, err := p.activeWindowSway(ctx); err == nil && snap != nil {
		return snap, nil
	}
	if snap, err := p.activeWindowHyprland(ctx); err == nil && snap != nil {
		return snap, nil
	}
	return nil, fmt.Errorf("no supported wayland compositor found")
}

// swayNode swaymsg get_tree 节点(仅解析需要的字段)
type swayNode struct {
	Focused          bool       `json:"focused"`
	AppID            string     `json:"app_id"`
	Name             string     `json:"name"`
	PID              int        `json:"pid"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused {
		return node
	}
	for i := range node.Nodes {
		if f := findFocused(&node.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range node.FloatingNodes {
		if f := findFocused(&node.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

func (p *WindowProbe) activeWindowSway(ctx context.Context) (*models.WindowSnapshot, error) {
	out, err := runCommand(ctx, "swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, err
	}

	var tree swayNode
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	focused := findFocused(&tree)
	if focused == nil {
		return nil, fmt.Errorf("no focused window")
	}

	appID := focused.AppID
	if appID == "" {
		appID = focused.WindowProperties.Class
	}

	snap := &models.WindowSnapshot{
		WindowTitle: focused.Name,
		WMClass:     appID,
		ProcessID:   focused.PID,
		ProcessName: processNameFromPID(focused.PID),
	}
	fillAppInfo(snap)
	return snap, nil
}

func (p *WindowProbe) activeWindowHyprland(ctx context.Context) (*models.WindowSnapshot, error) {
	out, err := runCommand(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return nil, err
	}

	var data struct {
		Class string `json:"class"`
		Title string `json:"title"`
		PID   int    `json:"pid"`
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	snap := &models.WindowSnapshot{
		WindowTitle: data.Title,
		WMClass:     data.Class,
		ProcessID:   data.PID,
		ProcessName: processNameFromPID(data.PID),
	}
	fillAppInfo(snap)
	return snap, nil
}

// processNameFromPID 从 /proc/<pid>/comm 读取进程名
func processNameFromPID(pid int) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// fillAppInfo 补全应用名/浏览器标记/站点推测
func fillAppInfo(snap *models.WindowSnapshot) {
	snap.AppName = snap.WMClass
	if snap.AppName == "" {
		snap.AppName = snap.ProcessName
	}
	if snap.AppName == "" {
		snap.AppName = extractAppFromTitle(snap.WindowTitle)
	}

	snap.IsBrowser = isBrowserApp(snap.AppName)
	if snap.IsBrowser {
		snap.URL = extractURLFromTitle(snap.WindowTitle)
	}
}
