package models

// ========================================
// AGV 작업 타입 상수
// ========================================
const (
	TaskPickup    TaskType = "pickup"    // 적재
	TaskTransport TaskType = "transport" // 운반
	TaskUnload    TaskType = "unload"    // 하역
	TaskIdle      TaskType = "idle"      // 대기
)

// TaskType - AGV 작업 타입
type TaskType string

// AGVTask - 두 Station 사이의 운반 작업 (초 단위 시간창)
type AGVTask struct {
	From      int      `json:"from"`      // 출발 Station ID
	To        int      `json:"to"`        // 도착 Station ID
	StartTime float64  `json:"startTime"` // 시작 시각 (초)
	EndTime   float64  `json:"endTime"`   // 종료 시각 (초)
	Type      TaskType `json:"type,omitempty"`
}

// AGVRoute - 한 AGV 의 전체 경로와 작업 목록
//
// Route[0] 은 시뮬레이션 시각 0 의 위치, 마지막 waypoint 는 CompletionTime
// 시점의 위치다.
type AGVRoute struct {
	AGVID          int        `json:"agvId"`
	Route          []Waypoint `json:"route"`
	CompletionTime float64    `json:"completionTime"` // 초
	Tasks          []AGVTask  `json:"tasks"`
}
