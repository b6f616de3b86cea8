package services

import (
	"math"

	"huntian-backend/models"
)

// StationLookup - Station ID 로 Station 조회
type StationLookup func(id int) (models.Station, bool)

// LookupFromIndex adapts an id -> station map to a StationLookup.
func LookupFromIndex(index map[int]models.Station) StationLookup {
	return func(id int) (models.Station, bool) {
		st, ok := index[id]
		return st, ok
	}
}

// TaskResolution - 특정 시각의 작업 상태
type TaskResolution struct {
	Status   models.TaskStatus
	Progress float64         // active 일 때만 의미 있음 (0~1)
	Position models.Waypoint // active 이고 Skipped 가 아닐 때만 의미 있음
	Skipped  bool            // 출발/도착 Station 을 찾지 못해 위치 계산 생략
}

// TaskStatusAt - active: start ≤ t ≤ end, completed: t > end, 나머지는 pending
func TaskStatusAt(task models.AGVTask, currentTime float64) models.TaskStatus {
	switch {
	case currentTime > task.EndTime:
		return models.TaskCompleted
	case currentTime >= task.StartTime:
		return models.TaskActive
	default:
		return models.TaskPending
	}
}

// ResolveTask - 작업 상태와 (active 인 경우) 보간 위치 계산
//
// Station 참조가 끊긴 작업은 에러 없이 Skipped 로 표시된다. 계획 데이터는
// 별도 시스템에서 오므로 여기서 검증하지 않는다.
func ResolveTask(task models.AGVTask, currentTime float64, lookup StationLookup) TaskResolution {
	res := TaskResolution{Status: TaskStatusAt(task, currentTime)}
	if res.Status != models.TaskActive {
		return res
	}

	from, okFrom := lookup(task.From)
	to, okTo := lookup(task.To)
	if !okFrom || !okTo {
		res.Skipped = true
		return res
	}

	res.Progress = taskProgress(task, currentTime)
	res.Position = models.Lerp(from.Position, to.Position, res.Progress)
	return res
}

func taskProgress(task models.AGVTask, currentTime float64) float64 {
	span := task.EndTime - task.StartTime
	if span <= 0 {
		return 1
	}
	return math.Min(1, math.Max(0, (currentTime-task.StartTime)/span))
}
