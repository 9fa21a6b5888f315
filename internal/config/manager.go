package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"

	"github.com/fsnotify/fsnotify"
)

// Manager 配置管理器
// 配置文件为 JSON 格式,加载失败时写入默认配置
type Manager struct {
	config     *models.AppConfig
	configPath string
	watcher    *fsnotify.Watcher
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager(configPath string) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
	}

	if err := m.load(); err != nil {
		// 如果加载失败，使用默认配置
		m.config = models.DefaultConfig()
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return m, nil
}

// load 加载配置
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file not found")
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	// 基于默认配置反序列化,文件中缺失的字段保持默认值
	config := models.DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.config = config
	return nil
}

// save 保存配置 (内部方法,不加锁)
func (m *Manager) save() error {
	// 确保目录存在
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Save 保存配置 (公共方法,加锁)
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.save()
}

// Reload 重新加载配置文件并原子替换
// 由 SIGHUP 信号或文件变化触发;加载失败时保留当前配置
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config := models.DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()

	logger.Info("配置已重新加载: %s", m.configPath)
	return nil
}

// Watch 监听配置文件变化并自动重载
// 返回停止监听的函数
func (m *Manager) Watch() (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config dir: %w", err)
	}

	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.configPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := m.Reload(); err != nil {
					logger.Warn("配置自动重载失败: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("配置监听错误: %v", err)
			}
		}
	}()

	logger.Info("配置文件监听已启动: %s", m.configPath)
	return func() { watcher.Close() }, nil
}

// Get 获取配置（只读副本）
func (m *Manager) Get() *models.AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 返回副本，避免外部修改
	configCopy := *m.config
	return &configCopy
}

// Update 更新配置
func (m *Manager) Update(updater func(*models.AppConfig)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updater(m.config)
	return m.save() // 使用内部 save() 方法,避免重复加锁
}

// GetGeneral 获取基础配置
func (m *Manager) GetGeneral() models.GeneralConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.General
}

// GetMonitoring 获取采样配置
func (m *Manager) GetMonitoring() models.MonitoringConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Monitoring
}

// GetDetection 获取检测配置
func (m *Manager) GetDetection() models.DetectionConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Detection
}

// GetPrivacy 获取隐私配置
func (m *Manager) GetPrivacy() models.PrivacyConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.config.Privacy
	// 切片返回副本,防止外部修改
	cfg.ExcludedApps = append([]string(nil), cfg.ExcludedApps...)
	cfg.ExcludedTitleKeywords = append([]string(nil), cfg.ExcludedTitleKeywords...)
	return cfg
}

// GetStorage 获取存储配置
func (m *Manager) GetStorage() models.StorageConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Storage
}

// GetServer 获取服务器配置
func (m *Manager) GetServer() models.ServerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Server
}

// GetNotifications 获取通知配置
func (m *Manager) GetNotifications() models.NotificationsConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Notifications
}

// GetUI 获取界面配置
func (m *Manager) GetUI() models.UIConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.UI
}

// IsAppExcluded 检查应用是否被隐私规则排除(子串匹配,不区分大小写)
func (m *Manager) IsAppExcluded(appName string) bool {
	if appName == "" {
		return false
	}
	lower := strings.ToLower(appName)
	for _, exc := range m.GetPrivacy().ExcludedApps {
		if exc != "" && strings.Contains(lower, strings.ToLower(exc)) {
			return true
		}
	}
	return false
}

// IsTitleExcluded 检查窗口标题是否包含排除关键字
func (m *Manager) IsTitleExcluded(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, kw := range m.GetPrivacy().ExcludedTitleKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
