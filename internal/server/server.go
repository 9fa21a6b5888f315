package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ContentTrackerAI/internal/config"
	"ContentTrackerAI/internal/daemon"
	"ContentTrackerAI/internal/report"
	"ContentTrackerAI/internal/storage"
	"ContentTrackerAI/pkg/logger"
	"ContentTrackerAI/pkg/models"

	"github.com/gin-gonic/gin"
)

// Server Web 服务器
// 提供状态查询、配置管理、活动查询和报表接口
type Server struct {
	router     *gin.Engine
	configMgr  *config.Manager
	storageMgr *storage.Manager
	daemon     *daemon.Daemon
	stats      *report.StatsCalculator
	reports    *report.Generator
	addr       string
	version    string
	httpServer *http.Server
}

// NewServer 创建 Web 服务器
func NewServer(
	configMgr *config.Manager,
	storageMgr *storage.Manager,
	d *daemon.Daemon,
	version string,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	serverCfg := configMgr.GetServer()
	addr := fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port)

	s := &Server{
		router:     router,
		configMgr:  configMgr,
		storageMgr: storageMgr,
		daemon:     d,
		stats:      report.NewStatsCalculator(storageMgr),
		reports:    report.NewGenerator(storageMgr),
		addr:       addr,
		version:    version,
	}

	s.setupRoutes()
	return s
}

// Addr 服务器监听地址
func (s *Server) Addr() string {
	return s.addr
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// API 路由组
	api := s.router.Group("/api")
	{
		// 系统信息
		api.GET("/version", s.handleGetVersion)
		api.GET("/status", s.handleGetStatus)

		// 配置管理
		api.GET("/config", s.handleGetConfig)
		api.PUT("/config", s.handleUpdateConfig)

		// 活动记录
		api.GET("/activities", s.handleGetActivities)

		// 统计与报表
		api.GET("/stats/today", s.handleGetTodayStats)
		api.GET("/stats/weekly", s.handleGetWeeklyStats)
		api.GET("/report/:date", s.handleGetReport)

		// 服务控制
		api.POST("/service/pause", s.handlePauseService)
		api.POST("/service/resume", s.handleResumeService)
	}
}

// Start 启动服务器(阻塞直到 Shutdown)
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	fmt.Printf("🌐 Web服务器启动: http://%s\n", s.addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("正在关闭 Web 服务器...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// handleGetVersion 获取版本信息
func (s *Server) handleGetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": s.version,
		"name":    "ContentTracker AI",
	})
}

// handleGetStatus 获取守护进程状态
func (s *Server) handleGetStatus(c *gin.Context) {
	count, err := s.storageMgr.GetRecordCount()
	if err != nil {
		logger.Warn("查询记录总数失败: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"daemon":        s.daemon.Status(),
		"total_records": count,
	})
}

// handleGetConfig 获取配置
func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.configMgr.Get())
}

// handleUpdateConfig 更新配置
func (s *Server) handleUpdateConfig(c *gin.Context) {
	var newConfig models.AppConfig
	if err := c.ShouldBindJSON(&newConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.configMgr.Update(func(cfg *models.AppConfig) {
		*cfg = newConfig
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "配置已更新"})
}

// handleGetActivities 查询活动记录
// 支持 ?date=YYYY-MM-DD 按日查询,或 ?limit=N 查询最近 N 条
func (s *Server) handleGetActivities(c *gin.Context) {
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		activities, err := s.storageMgr.GetActivitiesForDate(date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := s.storageMgr.GetRecentActivities(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}

// handleGetTodayStats 获取今日统计
func (s *Server) handleGetTodayStats(c *gin.Context) {
	summary, err := s.stats.DailySummary(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleGetWeeklyStats 获取最近 N 天的活动分布,默认 7 天
func (s *Server) handleGetWeeklyStats(c *gin.Context) {
	days := 7
	if d := c.Query("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	breakdown, err := s.stats.Weekly(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// handleGetReport 获取指定日期的完整报表,date 为 YYYY-MM-DD 或 today
func (s *Server) handleGetReport(c *gin.Context) {
	dateStr := c.Param("date")

	var date time.Time
	if dateStr == "today" {
		date = time.Now()
	} else {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	dailyReport, err := s.reports.Daily(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dailyReport)
}

// handlePauseService 暂停采样
func (s *Server) handlePauseService(c *gin.Context) {
	if !s.daemon.IsRunning() {
		c.JSON(http.StatusConflict, gin.H{"error": "daemon not running"})
		return
	}
	s.daemon.Pause()
	c.JSON(http.StatusOK, gin.H{"message": "采样已暂停", "is_paused": true})
}

// handleResumeService 恢复采样
func (s *Server) handleResumeService(c *gin.Context) {
	if !s.daemon.IsRunning() {
		c.JSON(http.StatusConflict, gin.H{"error": "daemon not running"})
		return
	}
	s.daemon.Resume()
	c.JSON(http.StatusOK, gin.H{"message": "采样已恢复", "is_paused": false})
}
