package models

import (
	"time"
)

// SimulationLog - 제어 명령과 타임라인 이벤트 로그
type SimulationLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	RunID       string    `gorm:"index;size:36" json:"run_id"`
	EventType   string    `gorm:"index;size:64" json:"event_type"` // "control", "task_started", "conflict_active", ...
	MessageType string    `gorm:"size:32" json:"message_type"`

	// 시뮬레이션 시각 (초)
	SimTime float64 `json:"sim_time"`
	Speed   float64 `json:"speed"`

	// 대상
	AGVID      *int    `json:"agv_id"`
	PositionX  float64 `json:"position_x"`
	PositionY  float64 `json:"position_y"`
	ConflictID string  `gorm:"size:64" json:"conflict_id"`
	Severity   string  `gorm:"size:16" json:"severity"`
	Label      string  `json:"label"`

	// 제어 명령
	Action string  `gorm:"size:16" json:"action"`
	Value  float64 `json:"value"`

	// 메타데이터
	DataJSON string `gorm:"type:text" json:"data_json"` // 원본 JSON
}

// LogStats - 이벤트 타입별 집계
type LogStats struct {
	TotalLogs   int64            `json:"total_logs"`
	EventCounts map[string]int64 `json:"event_counts"`
	TimeRange   string           `json:"time_range"`
}
