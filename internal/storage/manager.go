package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ContentTrackerAI/pkg/models"

	_ "modernc.org/sqlite"
)

// Manager 存储管理器
type Manager struct {
	db     *sql.DB
	dbPath string
}

// NewManager 创建存储管理器
func NewManager(dataDir string) (*Manager, error) {
	// 确保数据目录存在
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "contenttracker.db")

	// 注意：modernc.org/sqlite 的驱动名称是 "sqlite" 而不是 "sqlite3"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := &Manager{
		db:     db,
		dbPath: dbPath,
	}

	if err := m.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return m, nil
}

// NewManagerAtPath 在指定路径创建存储管理器(测试用 :memory:)
func NewManagerAtPath(dbPath string) (*Manager, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := &Manager{
		db:     db,
		dbPath: dbPath,
	}

	if err := m.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return m, nil
}

// initSchema 初始化数据库表结构
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		app_name TEXT NOT NULL,
		window_title TEXT,
		process_name TEXT,
		process_id INTEGER DEFAULT 0,
		website TEXT,
		url TEXT,
		content_type TEXT DEFAULT 'unknown',
		content_category TEXT,
		content_description TEXT,
		content_title TEXT,
		activity_type TEXT DEFAULT 'neutral',
		is_productive BOOLEAN DEFAULT 0,
		productivity_score REAL DEFAULT 0,
		detection_method TEXT DEFAULT 'rules',
		confidence REAL DEFAULT 0,
		nsfw_score REAL DEFAULT 0,
		is_nsfw BOOLEAN DEFAULT 0,
		duration INTEGER DEFAULT 0,
		screenshot_path TEXT,
		is_idle BOOLEAN DEFAULT 0,
		is_excluded BOOLEAN DEFAULT 0,
		extracted_text TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp);
	CREATE INDEX IF NOT EXISTS idx_activities_app ON activities(app_name);
	CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type);
	CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date(timestamp));

	CREATE TABLE IF NOT EXISTS daily_stats (
		date TEXT PRIMARY KEY,
		total_tracked_time INTEGER DEFAULT 0,
		productive_time INTEGER DEFAULT 0,
		entertainment_time INTEGER DEFAULT 0,
		social_time INTEGER DEFAULT 0,
		idle_time INTEGER DEFAULT 0,
		productivity_score REAL DEFAULT 0,
		total_sessions INTEGER DEFAULT 0,
		app_switches INTEGER DEFAULT 0,
		nsfw_detections INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS app_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		app_name TEXT NOT NULL,
		total_time INTEGER DEFAULT 0,
		sessions INTEGER DEFAULT 0,
		UNIQUE(date, app_name)
	);

	CREATE INDEX IF NOT EXISTS idx_app_usage_date ON app_usage(date);

	CREATE TABLE IF NOT EXISTS website_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		website TEXT NOT NULL,
		total_time INTEGER DEFAULT 0,
		sessions INTEGER DEFAULT 0,
		UNIQUE(date, website)
	);

	CREATE INDEX IF NOT EXISTS idx_website_usage_date ON website_usage(date);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := m.db.Exec(schema)
	return err
}

// Close 关闭数据库
func (m *Manager) Close() error {
	return m.db.Close()
}

const activityColumns = `id, timestamp, app_name, window_title, process_name, process_id,
	website, url, content_type, content_category, content_description, content_title,
	activity_type, is_productive, productivity_score, detection_method, confidence,
	nsfw_score, is_nsfw, duration, screenshot_path, is_idle, is_excluded, extracted_text`

// InsertActivity 插入活动记录并回填 ID
func (m *Manager) InsertActivity(a *models.Activity) error {
	query := `
		INSERT INTO activities (timestamp, app_name, window_title, process_name, process_id,
			website, url, content_type, content_category, content_description, content_title,
			activity_type, is_productive, productivity_score, detection_method, confidence,
			nsfw_score, is_nsfw, duration, screenshot_path, is_idle, is_excluded, extracted_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := m.db.Exec(query,
		a.Timestamp,
		a.AppName,
		a.WindowTitle,
		a.ProcessName,
		a.ProcessID,
		a.Website,
		a.URL,
		string(a.ContentType),
		a.ContentCategory,
		a.ContentDescription,
		a.ContentTitle,
		string(a.ActivityType),
		a.IsProductive,
		a.ProductivityScore,
		string(a.DetectionMethod),
		a.Confidence,
		a.NSFWScore,
		a.IsNSFW,
		a.Duration,
		a.ScreenshotPath,
		a.IsIdle,
		a.IsExcluded,
		a.ExtractedText,
	)

	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	a.ID = id
	return nil
}

// scanActivity 扫描单行活动记录
func scanActivity(rows *sql.Rows) (*models.Activity, error) {
	a := &models.Activity{}
	var contentType, activityType, detectionMethod string

	err := rows.Scan(
		&a.ID,
		&a.Timestamp,
		&a.AppName,
		&a.WindowTitle,
		&a.ProcessName,
		&a.ProcessID,
		&a.Website,
		&a.URL,
		&contentType,
		&a.ContentCategory,
		&a.ContentDescription,
		&a.ContentTitle,
		&activityType,
		&a.IsProductive,
		&a.ProductivityScore,
		&detectionMethod,
		&a.Confidence,
		&a.NSFWScore,
		&a.IsNSFW,
		&a.Duration,
		&a.ScreenshotPath,
		&a.IsIdle,
		&a.IsExcluded,
		&a.ExtractedText,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan activity: %w", err)
	}

	a.ContentType = models.ContentType(contentType)
	a.ActivityType = models.ActivityType(activityType)
	a.DetectionMethod = models.DetectionMethod(detectionMethod)
	return a, nil
}

// GetActivities 获取指定时间范围的活动记录
func (m *Manager) GetActivities(start, end time.Time) ([]*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`

	rows, err := m.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// GetRecentActivities 获取最近的 N 条活动记录(时间倒序)
func (m *Manager) GetRecentActivities(limit int) ([]*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// GetLastActivity 获取最新一条活动记录,无记录时返回 nil
func (m *Manager) GetLastActivity() (*models.Activity, error) {
	activities, err := m.GetRecentActivities(1)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, nil
	}
	return activities[0], nil
}

// GetActivitiesForDate 获取指定日期的全部活动记录
func (m *Manager) GetActivitiesForDate(date time.Time) ([]*models.Activity, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return m.GetActivities(startOfDay, startOfDay.Add(24*time.Hour))
}

// UpdateDailyStats 重算并写入指定日期的每日统计
// 由定时聚合任务调用,基于 activities 表全量重算,幂等
func (m *Manager) UpdateDailyStats(date time.Time) error {
	activities, err := m.GetActivitiesForDate(date)
	if err != nil {
		return err
	}

	dateStr := date.Format("2006-01-02")

	var totalTime, productiveTime, entertainmentTime, socialTime, idleTime int
	var nsfwCount, appSwitches int
	var lastApp string

	for _, a := range activities {
		if a.IsIdle {
			idleTime += a.Duration
			continue
		}
		totalTime += a.Duration

		switch a.ActivityType {
		case models.ActivityProductive, models.ActivityEducational:
			productiveTime += a.Duration
		case models.ActivityEntertainment, models.ActivityGaming:
			entertainmentTime += a.Duration
		case models.ActivitySocialMedia:
			socialTime += a.Duration
		}

		if a.IsNSFW {
			nsfwCount++
		}
		if lastApp != "" && a.AppName != lastApp {
			appSwitches++
		}
		lastApp = a.AppName
	}

	var score float64
	if totalTime > 0 {
		score = float64(productiveTime) / float64(totalTime) * 100
	}

	query := `
		INSERT INTO daily_stats (date, total_tracked_time, productive_time, entertainment_time,
			social_time, idle_time, productivity_score, total_sessions, app_switches,
			nsfw_detections, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			total_tracked_time = excluded.total_tracked_time,
			productive_time = excluded.productive_time,
			entertainment_time = excluded.entertainment_time,
			social_time = excluded.social_time,
			idle_time = excluded.idle_time,
			productivity_score = excluded.productivity_score,
			total_sessions = excluded.total_sessions,
			app_switches = excluded.app_switches,
			nsfw_detections = excluded.nsfw_detections,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = m.db.Exec(query, dateStr, totalTime, productiveTime, entertainmentTime,
		socialTime, idleTime, score, len(activities), appSwitches, nsfwCount)
	if err != nil {
		return fmt.Errorf("failed to update daily stats: %w", err)
	}
	return nil
}

// UpdateAppUsage 累加应用使用时长
func (m *Manager) UpdateAppUsage(date time.Time, appName string, seconds int) error {
	if appName == "" || seconds <= 0 {
		return nil
	}

	query := `
		INSERT INTO app_usage (date, app_name, total_time, sessions)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(date, app_name) DO UPDATE SET
			total_time = total_time + excluded.total_time,
			sessions = sessions + 1
	`

	_, err := m.db.Exec(query, date.Format("2006-01-02"), appName, seconds)
	if err != nil {
		return fmt.Errorf("failed to update app usage: %w", err)
	}
	return nil
}

// UpdateWebsiteUsage 累加网站使用时长
func (m *Manager) UpdateWebsiteUsage(date time.Time, website string, seconds int) error {
	if website == "" || seconds <= 0 {
		return nil
	}

	query := `
		INSERT INTO website_usage (date, website, total_time, sessions)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(date, website) DO UPDATE SET
			total_time = total_time + excluded.total_time,
			sessions = sessions + 1
	`

	_, err := m.db.Exec(query, date.Format("2006-01-02"), website, seconds)
	if err != nil {
		return fmt.Errorf("failed to update website usage: %w", err)
	}
	return nil
}

// GetDailyStats 读取指定日期的每日统计,无数据时返回 nil
func (m *Manager) GetDailyStats(date time.Time) (*models.DailySummary, error) {
	query := `
		SELECT total_tracked_time, productive_time, entertainment_time, social_time,
			idle_time, productivity_score, total_sessions, app_switches, nsfw_detections
		FROM daily_stats
		WHERE date = ?
	`

	dateStr := date.Format("2006-01-02")
	summary := &models.DailySummary{
		Date:           dateStr,
		TimeByActivity: make(map[models.ActivityType]int),
	}

	var productiveTime, entertainmentTime, socialTime, idleTime int
	err := m.db.QueryRow(query, dateStr).Scan(
		&summary.TotalTrackedTime,
		&productiveTime,
		&entertainmentTime,
		&socialTime,
		&idleTime,
		&summary.ProductivityScore,
		&summary.TotalSessions,
		&summary.AppSwitches,
		&summary.NSFWDetections,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	summary.TimeByActivity[models.ActivityProductive] = productiveTime
	summary.TimeByActivity[models.ActivityEntertainment] = entertainmentTime
	summary.TimeByActivity[models.ActivitySocialMedia] = socialTime
	summary.TimeByActivity[models.ActivityIdle] = idleTime
	return summary, nil
}

// GetTimeByCategory 按活动类型聚合指定日期的时长(直接从 activities 表统计)
func (m *Manager) GetTimeByCategory(date time.Time) (map[models.ActivityType]int, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	query := `
		SELECT activity_type, COALESCE(SUM(duration), 0)
		FROM activities
		WHERE timestamp >= ? AND timestamp < ? AND is_idle = 0
		GROUP BY activity_type
	`

	rows, err := m.db.Query(query, startOfDay, startOfDay.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to query time by category: %w", err)
	}
	defer rows.Close()

	result := make(map[models.ActivityType]int)
	for rows.Next() {
		var activityType string
		var seconds int
		if err := rows.Scan(&activityType, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		result[models.ActivityType(activityType)] = seconds
	}

	return result, rows.Err()
}

// GetTopApps 获取指定日期使用时长最长的 N 个应用
func (m *Manager) GetTopApps(date time.Time, limit int) ([]models.UsageEntry, error) {
	query := `
		SELECT app_name, total_time, sessions
		FROM app_usage
		WHERE date = ?
		ORDER BY total_time DESC
		LIMIT ?
	`
	return m.queryUsage(query, date.Format("2006-01-02"), limit)
}

// GetTopWebsites 获取指定日期访问时长最长的 N 个网站
func (m *Manager) GetTopWebsites(date time.Time, limit int) ([]models.UsageEntry, error) {
	query := `
		SELECT website, total_time, sessions
		FROM website_usage
		WHERE date = ?
		ORDER BY total_time DESC
		LIMIT ?
	`
	return m.queryUsage(query, date.Format("2006-01-02"), limit)
}

func (m *Manager) queryUsage(query, dateStr string, limit int) ([]models.UsageEntry, error) {
	rows, err := m.db.Query(query, dateStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var entries []models.UsageEntry
	for rows.Next() {
		var e models.UsageEntry
		if err := rows.Scan(&e.Name, &e.TotalTime, &e.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetHourlyBreakdown 按小时聚合指定日期的时长
func (m *Manager) GetHourlyBreakdown(date time.Time) ([]models.HourlyEntry, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	query := `
		SELECT CAST(strftime('%H', timestamp) AS INTEGER) AS hour,
			COALESCE(SUM(duration), 0),
			COALESCE(SUM(CASE WHEN is_productive = 1 THEN duration ELSE 0 END), 0)
		FROM activities
		WHERE timestamp >= ? AND timestamp < ? AND is_idle = 0
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := m.db.Query(query, startOfDay, startOfDay.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly breakdown: %w", err)
	}
	defer rows.Close()

	var entries []models.HourlyEntry
	for rows.Next() {
		var e models.HourlyEntry
		if err := rows.Scan(&e.Hour, &e.TotalTime, &e.ProductiveTime); err != nil {
			return nil, fmt.Errorf("failed to scan hourly row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CleanupOldData 删除超过保留期的数据,返回删除的活动记录数
// 同时清理对应的截图文件和聚合表行
func (m *Manager) CleanupOldData(retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	// 先收集要删除的截图文件路径
	rows, err := m.db.Query(
		`SELECT screenshot_path FROM activities WHERE timestamp < ? AND screenshot_path != ''`,
		cutoffDate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query old screenshots: %w", err)
	}

	var filePaths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan screenshot path: %w", err)
		}
		filePaths = append(filePaths, path)
	}
	rows.Close()

	// 删除文件
	for _, path := range filePaths {
		os.Remove(path) // 忽略错误
	}

	result, err := m.db.Exec(`DELETE FROM activities WHERE timestamp < ?`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old activities: %w", err)
	}

	cutoffStr := cutoffDate.Format("2006-01-02")
	m.db.Exec(`DELETE FROM daily_stats WHERE date < ?`, cutoffStr)
	m.db.Exec(`DELETE FROM app_usage WHERE date < ?`, cutoffStr)
	m.db.Exec(`DELETE FROM website_usage WHERE date < ?`, cutoffStr)

	return result.RowsAffected()
}

// GetRecordCount 获取活动记录总数
func (m *Manager) GetRecordCount() (int64, error) {
	var count int64
	err := m.db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// GetSetting 读取设置项,不存在时返回默认值
func (m *Manager) GetSetting(key, defaultValue string) (string, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// SetSetting 写入设置项
func (m *Manager) SetSetting(key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := m.db.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}
