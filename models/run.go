package models

import "time"

const (
	RunSourceUpload = "upload"
	RunSourceFile   = "file"
	RunSourceDemo   = "demo"
)

// SimulationRun - 로드된 데이터셋 1건 (시계 상태는 저장하지 않는다)
type SimulationRun struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:128" json:"name"`
	Source        string    `gorm:"size:16" json:"source"`
	StationCount  int       `json:"station_count"`
	RouteCount    int       `json:"route_count"`
	TaskCount     int       `json:"task_count"`
	ConflictCount int       `json:"conflict_count"`
	TotalDuration float64   `json:"total_duration"`
	DatasetJSON   string    `gorm:"type:longtext" json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
