package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"huntian-backend/models"

	"gorm.io/gorm"
)

// LogBuffer - 시뮬레이션 로그 버퍼 (비동기 일괄 저장)
type LogBuffer struct {
	db        *gorm.DB
	logs      []models.SimulationLog
	mu        sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 주기
	stopChan  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// NewLogBuffer - 로그 버퍼 생성 및 자동 플러시 시작
func NewLogBuffer(db *gorm.DB, flushSize int, flushInterval time.Duration) *LogBuffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	lb := &LogBuffer{
		db:        db,
		logs:      make([]models.SimulationLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	go lb.autoFlush()

	log.Printf("✅ 로깅 시스템 초기화 완료 (flushSize: %d, flushInterval: %v)", flushSize, flushInterval)
	return lb
}

// autoFlush - 주기적 로그 저장
func (lb *LogBuffer) autoFlush() {
	defer close(lb.done)
	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush() // 종료 시 남은 로그 저장
			return
		}
	}
}

// Add - 로그 버퍼에 추가
func (lb *LogBuffer) Add(entry models.SimulationLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	// 버퍼 크기가 차면 즉시 플러시
	if size >= lb.flushSize {
		go lb.Flush()
	}
}

// Pending - 아직 저장되지 않은 로그 수
func (lb *LogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// Flush - 버퍼의 모든 로그를 DB에 저장
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}

	logsToSave := make([]models.SimulationLog, len(lb.logs))
	copy(logsToSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if lb.db == nil {
		log.Printf("⚠️ DB 없음, 로그 %d개 폐기", len(logsToSave))
		return
	}

	if err := lb.db.CreateInBatches(logsToSave, 100).Error; err != nil {
		log.Printf("❌ 로그 저장 실패: %v", err)
		return
	}
	log.Printf("💾 로그 %d개 저장 완료", len(logsToSave))
}

// Stop - 자동 플러시 종료 (남은 로그 저장 후 반환)
func (lb *LogBuffer) Stop() {
	lb.stopOnce.Do(func() {
		close(lb.stopChan)
		<-lb.done
		log.Println("🛑 로깅 시스템 종료")
	})
}

// LogControl - 제어 명령 로그
func (lb *LogBuffer) LogControl(runID string, cmd models.ControlCommand, clock SimulationClock) {
	dataJSON, _ := json.Marshal(cmd)
	lb.Add(models.SimulationLog{
		RunID:       runID,
		EventType:   models.EventControl,
		MessageType: models.MessageTypeControl,
		SimTime:     clock.CurrentTime,
		Speed:       clock.Speed,
		Action:      cmd.Action,
		Value:       cmd.Value,
		DataJSON:    string(dataJSON),
	})
}

// LogEvent - 타임라인 이벤트 로그
func (lb *LogBuffer) LogEvent(ev models.TimelineEvent, speed float64) {
	dataJSON, _ := json.Marshal(ev)
	lb.Add(models.SimulationLog{
		RunID:       ev.RunID,
		EventType:   ev.Type,
		MessageType: models.MessageTypeTimelineEvent,
		SimTime:     ev.SimTime,
		Speed:       speed,
		AGVID:       ev.AGVID,
		PositionX:   ev.Position.X(),
		PositionY:   ev.Position.Y(),
		ConflictID:  ev.ConflictID,
		Severity:    string(ev.Severity),
		Label:       ev.Label,
		DataJSON:    string(dataJSON),
	})
}

// LogRunLoaded - 데이터셋 로드 로그
func (lb *LogBuffer) LogRunLoaded(run *models.SimulationRun) {
	lb.Add(models.SimulationLog{
		RunID:       run.ID,
		EventType:   models.EventRunLoaded,
		MessageType: models.MessageTypeRunLoaded,
		Label:       fmt.Sprintf("%s (%s, %d routes)", run.Name, run.Source, run.RouteCount),
	})
}

// runScope - runID 가 비어 있으면 전체 run 대상
func runScope(db *gorm.DB, runID string) *gorm.DB {
	if runID == "" {
		return db
	}
	return db.Where("run_id = ?", runID)
}

// GetRecentLogs - 최근 로그 조회
func GetRecentLogs(db *gorm.DB, runID string, limit int) ([]models.SimulationLog, error) {
	if db == nil {
		return nil, models.ErrNoDatabase
	}
	var logs []models.SimulationLog
	err := runScope(db, runID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetLogsByTimeRange - 시간 범위로 로그 조회
func GetLogsByTimeRange(db *gorm.DB, runID string, start, end time.Time, limit int) ([]models.SimulationLog, error) {
	if db == nil {
		return nil, models.ErrNoDatabase
	}
	var logs []models.SimulationLog
	query := runScope(db, runID).Where("created_at BETWEEN ? AND ?", start, end)

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&logs).Error
	return logs, err
}

// GetLogsByEventType - 이벤트 타입별 로그 조회
func GetLogsByEventType(db *gorm.DB, runID, eventType string, limit int) ([]models.SimulationLog, error) {
	if db == nil {
		return nil, models.ErrNoDatabase
	}
	var logs []models.SimulationLog
	err := runScope(db, runID).
		Where("event_type = ?", eventType).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetLogStats - 최근 hours 시간 동안의 로그 통계
func GetLogStats(db *gorm.DB, runID string, hours int) (*models.LogStats, error) {
	if db == nil {
		return nil, models.ErrNoDatabase
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	var totalLogs int64
	if err := runScope(db.Model(&models.SimulationLog{}), runID).
		Where("created_at >= ?", since).
		Count(&totalLogs).Error; err != nil {
		return nil, err
	}

	// 이벤트 타입별 카운트
	var eventCounts []struct {
		EventType string
		Count     int64
	}
	if err := runScope(db.Model(&models.SimulationLog{}), runID).
		Select("event_type, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("event_type").
		Scan(&eventCounts).Error; err != nil {
		return nil, err
	}

	eventMap := make(map[string]int64, len(eventCounts))
	for _, ec := range eventCounts {
		eventMap[ec.EventType] = ec.Count
	}

	return &models.LogStats{
		TotalLogs:   totalLogs,
		EventCounts: eventMap,
		TimeRange:   fmt.Sprintf("Last %d hours", hours),
	}, nil
}
