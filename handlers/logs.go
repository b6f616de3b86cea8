package handlers

import (
	"strconv"
	"time"

	"huntian-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LogsHandler - 시뮬레이션 로그 조회 API
type LogsHandler struct {
	db *gorm.DB
}

func NewLogsHandler(db *gorm.DB) *LogsHandler {
	return &LogsHandler{db: db}
}

// Register - /api/logs 라우트 등록
func (h *LogsHandler) Register(rg fiber.Router) {
	rg.Get("/recent", h.HandleGetRecentLogs)     // 최근 로그
	rg.Get("/range", h.HandleGetLogsByTimeRange) // 시간 범위
	rg.Get("/type", h.HandleGetLogsByEventType)  // 이벤트 타입별
	rg.Get("/stats", h.HandleGetLogStats)        // 통계
}

func queryLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return limit
}

// HandleGetRecentLogs - 최근 로그 조회 (?run_id= 없으면 전체)
func (h *LogsHandler) HandleGetRecentLogs(c *fiber.Ctx) error {
	logs, err := services.GetRecentLogs(h.db, c.Query("run_id"), queryLimit(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogsByTimeRange - 시간 범위로 로그 조회
func (h *LogsHandler) HandleGetLogsByTimeRange(c *fiber.Ctx) error {
	startStr := c.Query("start") // RFC3339 format
	endStr := c.Query("end")     // RFC3339 format

	// 기본: 24시간 전
	start := time.Now().Add(-24 * time.Hour)
	if startStr != "" {
		parsed, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return badRequest(c, "Invalid start time format (use RFC3339)")
		}
		start = parsed
	}

	end := time.Now()
	if endStr != "" {
		parsed, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return badRequest(c, "Invalid end time format (use RFC3339)")
		}
		end = parsed
	}

	logs, err := services.GetLogsByTimeRange(h.db, c.Query("run_id"), start, end, queryLimit(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"time_range": fiber.Map{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
		"logs": logs,
	})
}

// HandleGetLogsByEventType - 이벤트 타입별 로그 조회
func (h *LogsHandler) HandleGetLogsByEventType(c *fiber.Ctx) error {
	eventType := c.Query("event_type")
	if eventType == "" {
		return badRequest(c, "event_type parameter is required")
	}

	logs, err := services.GetLogsByEventType(h.db, c.Query("run_id"), eventType, queryLimit(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(logs),
		"event_type": eventType,
		"logs":       logs,
	})
}

// HandleGetLogStats - 로그 통계 조회
func (h *LogsHandler) HandleGetLogStats(c *fiber.Ctx) error {
	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	stats, err := services.GetLogStats(h.db, c.Query("run_id"), hours)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
