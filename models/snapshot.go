package models

// ========================================
// 타임라인 상태 상수
// ========================================
const (
	TimelineIdle      TimelineState = "idle"      // t = 0, 정지
	TimelinePlaying   TimelineState = "playing"   // 재생 중
	TimelinePaused    TimelineState = "paused"    // 0 < t < total, 정지
	TimelineCompleted TimelineState = "completed" // t = total
)

// TimelineState - idle | playing | paused | completed
type TimelineState string

// ========================================
// 충돌 가시성
// ========================================
const (
	VisibilityHidden  Visibility = "hidden"
	VisibilityWarning Visibility = "warning-visible"
	VisibilityActive  Visibility = "active"
)

// Visibility - 충돌 마커 표시 단계
type Visibility string

// ========================================
// 작업 상태
// ========================================
const (
	TaskPending   TaskStatus = "pending"
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
)

// TaskStatus - pending | active | completed
type TaskStatus string

// TaskPosition - 진행 중인 작업의 보간 위치
type TaskPosition struct {
	AGVID     int      `json:"agvId"`
	TaskIndex int      `json:"taskIndex"`
	From      int      `json:"from"`
	To        int      `json:"to"`
	Type      TaskType `json:"type,omitempty"`
	Progress  float64  `json:"progress"` // 0~1
	Position  Waypoint `json:"position"`
	Completed bool     `json:"completed"`
}

// Snapshot is every derived value for one instant of simulated time. All
// fields are computed from the same CurrentTime.
type Snapshot struct {
	RunID              string                `json:"runId"`
	CurrentTime        float64               `json:"currentTime"`
	TotalDuration      float64               `json:"totalDuration"`
	IsPlaying          bool                  `json:"isPlaying"`
	Speed              float64               `json:"speed"`
	State              TimelineState         `json:"state"`
	Positions          map[int]Waypoint      `json:"positions"`
	ActiveTasks        []TaskPosition        `json:"activeTasks"`
	CompletedTasks     int                   `json:"completedTasks"`
	ConflictVisibility map[string]Visibility `json:"conflictVisibility"`
	Metrics            PerformanceMetrics    `json:"metrics"`

	// Dataset the snapshot was derived from. Shared, never mutated.
	Dataset *SimulationDataset `json:"-"`
}
