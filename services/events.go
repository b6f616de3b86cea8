package services

import (
	"fmt"
	"sort"
	"sync"

	"huntian-backend/models"
)

// 이벤트 우선순위 (높을수록 먼저)
var eventPriority = map[string]int{
	models.EventSimulationCompleted: 100,
	models.EventConflictActive:      80, // critical 은 +10
	models.EventTaskFinished:        50,
	models.EventTaskStarted:         40,
	models.EventMarkerReached:       20,
}

// EventPriority returns the priority of an event type, critical conflicts
// ranking above warnings.
func EventPriority(eventType string, severity models.Severity) int {
	p := eventPriority[eventType]
	if eventType == models.EventConflictActive && severity == models.SeverityCritical {
		p += 10
	}
	return p
}

// DetectEvents - 연속된 두 스냅샷 사이의 타임라인 이벤트 추출
//
// 같은 run 안에서 시간이 앞으로 진행된 경우에만 이벤트를 만든다. seek 으로
// 되감거나 새 데이터셋을 로드한 경우에는 아무것도 반환하지 않는다.
func DetectEvents(prev, cur models.Snapshot) []models.TimelineEvent {
	if prev.RunID != cur.RunID || cur.Dataset == nil || !(cur.CurrentTime > prev.CurrentTime) {
		return nil
	}
	from, to := prev.CurrentTime, cur.CurrentTime
	// 시각 0 에 시작하는 항목은 첫 진행 때 포함한다
	crossed := func(t float64) bool { return (t > from || (from == 0 && t == 0)) && t <= to }

	var events []models.TimelineEvent
	add := func(ev models.TimelineEvent) {
		ev.RunID = cur.RunID
		ev.Priority = EventPriority(ev.Type, ev.Severity)
		events = append(events, ev)
	}

	for _, route := range cur.Dataset.Routes {
		agvID := route.AGVID
		for i, task := range route.Tasks {
			if crossed(task.StartTime) {
				add(models.TimelineEvent{
					Type:     models.EventTaskStarted,
					SimTime:  task.StartTime,
					AGVID:    &agvID,
					Label:    fmt.Sprintf("AGV %d task %d started (%d → %d)", agvID, i, task.From, task.To),
					Position: cur.Positions[agvID],
				})
			}
			if crossed(task.EndTime) {
				add(models.TimelineEvent{
					Type:     models.EventTaskFinished,
					SimTime:  task.EndTime,
					AGVID:    &agvID,
					Label:    fmt.Sprintf("AGV %d task %d finished at station %d", agvID, i, task.To),
					Position: cur.Positions[agvID],
				})
			}
		}
	}

	for _, c := range cur.Dataset.Conflicts {
		if cur.ConflictVisibility[c.ID] != models.VisibilityActive ||
			prev.ConflictVisibility[c.ID] == models.VisibilityActive {
			continue
		}
		label := fmt.Sprintf("conflict %s between AGVs %v", c.ID, c.InvolvedAGVs)
		if c.Resolution != "" {
			label += ": " + c.Resolution
		}
		add(models.TimelineEvent{
			Type:       models.EventConflictActive,
			SimTime:    c.Time,
			ConflictID: c.ID,
			Severity:   c.Severity,
			Label:      label,
			Position:   c.Position,
		})
	}

	for _, m := range cur.Dataset.Markers {
		if crossed(m.Time) {
			add(models.TimelineEvent{
				Type:    models.EventMarkerReached,
				SimTime: m.Time,
				Label:   fmt.Sprintf("[%s] %s", m.Type, m.Label),
			})
		}
	}

	if cur.State == models.TimelineCompleted && prev.State != models.TimelineCompleted {
		add(models.TimelineEvent{
			Type:    models.EventSimulationCompleted,
			SimTime: cur.CurrentTime,
			Label:   fmt.Sprintf("simulation completed in %s", FormatDuration(cur.CurrentTime)),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SimTime < events[j].SimTime
	})
	return events
}

// EventDetector - 스냅샷 스트림을 받아 이벤트를 콜백으로 전달
type EventDetector struct {
	mu      sync.Mutex
	prev    models.Snapshot
	hasPrev bool
	emit    func(models.TimelineEvent)
}

// NewEventDetector - EventDetector 생성
func NewEventDetector(emit func(models.TimelineEvent)) *EventDetector {
	return &EventDetector{emit: emit}
}

// Observe - TimelineController.OnTick 에 연결해서 사용
func (d *EventDetector) Observe(snap models.Snapshot) {
	d.mu.Lock()
	prev, hasPrev := d.prev, d.hasPrev
	d.prev, d.hasPrev = snap, true
	d.mu.Unlock()

	if !hasPrev || d.emit == nil {
		return
	}
	for _, ev := range DetectEvents(prev, snap) {
		d.emit(ev)
	}
}
