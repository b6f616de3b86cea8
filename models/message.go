package models

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Server → Web
	MessageTypeSnapshot      = "snapshot"       // 타임라인 스냅샷
	MessageTypeTimelineEvent = "timeline_event" // 작업/충돌/마커 이벤트
	MessageTypeRunLoaded     = "run_loaded"     // 새 데이터셋 로드
	MessageTypeSystemInfo    = "system_info"    // 시스템 정보
	MessageTypeError         = "error"          // 잘못된 요청

	// Web → Server
	MessageTypeControl = "control" // 재생/정지/탐색/속도
)

// ========================================
// 제어 액션
// ========================================
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
	ActionSpeed = "speed"
	ActionReset = "reset"
)

// WebSocketMessage - 공통 WebSocket 메시지 형식
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ControlCommand - Web 클라이언트의 타임라인 제어 명령
type ControlCommand struct {
	Action string  `json:"action"` // play | pause | seek | speed | reset
	Value  float64 `json:"value"`  // seek: 초, speed: 배속
}

// ========================================
// 타임라인 이벤트
// ========================================
const (
	EventTaskStarted         = "task_started"
	EventTaskFinished        = "task_finished"
	EventConflictActive      = "conflict_active"
	EventMarkerReached       = "marker_reached"
	EventSimulationCompleted = "simulation_completed"

	// 제어 로그용
	EventControl   = "control"
	EventRunLoaded = "run_loaded"
)

// TimelineEvent - 연속된 두 스냅샷 사이에서 발생한 사건
type TimelineEvent struct {
	Type       string   `json:"type"`
	Priority   int      `json:"priority"`
	RunID      string   `json:"runId"`
	SimTime    float64  `json:"simTime"`
	AGVID      *int     `json:"agvId,omitempty"`
	ConflictID string   `json:"conflictId,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
	Label      string   `json:"label"`
	Position   Waypoint `json:"position"`
}

// SystemInfo - 시스템 정보
type SystemInfo struct {
	ConnectedClients int    `json:"connected_clients"`
	RunID            string `json:"run_id"`
	ServerTime       string `json:"server_time"`
	Message          string `json:"message,omitempty"`
}
