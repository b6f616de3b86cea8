package services

import (
	"huntian-backend/algorithms"
	"huntian-backend/models"
)

// BuildSnapshot - (dataset, clock) 로부터 스냅샷 1개 생성
//
// 모든 파생 값은 같은 currentTime 으로 계산된다. 각 AGV 는 서로 독립적으로
// 평가된다.
func BuildSnapshot(runID string, dataset *models.SimulationDataset, clock SimulationClock) models.Snapshot {
	if dataset == nil {
		dataset = &models.SimulationDataset{}
	}
	t := clock.CurrentTime

	snap := models.Snapshot{
		RunID:              runID,
		CurrentTime:        t,
		TotalDuration:      clock.TotalDuration,
		IsPlaying:          clock.IsPlaying,
		Speed:              clock.Speed,
		State:              clock.State(),
		Positions:          make(map[int]models.Waypoint, len(dataset.Routes)),
		ActiveTasks:        []models.TaskPosition{},
		ConflictVisibility: make(map[string]models.Visibility, len(dataset.Conflicts)),
		Dataset:            dataset,
	}

	lookup := LookupFromIndex(dataset.StationIndex())
	for _, route := range dataset.Routes {
		if len(route.Route) > 0 {
			snap.Positions[route.AGVID] = algorithms.PositionAt(route.Route, route.CompletionTime, t)
		}

		for i, task := range route.Tasks {
			res := ResolveTask(task, t, lookup)
			switch res.Status {
			case models.TaskCompleted:
				snap.CompletedTasks++
			case models.TaskActive:
				if res.Skipped {
					continue
				}
				snap.ActiveTasks = append(snap.ActiveTasks, models.TaskPosition{
					AGVID:     route.AGVID,
					TaskIndex: i,
					From:      task.From,
					To:        task.To,
					Type:      task.Type,
					Progress:  res.Progress,
					Position:  res.Position,
					Completed: res.Progress >= 1,
				})
			}
		}
	}

	for _, c := range dataset.Conflicts {
		snap.ConflictVisibility[c.ID] = ConflictVisibility(c, t)
	}

	snap.Metrics = ComputeMetrics(dataset.Routes, dataset.Stations, dataset.Conflicts, t)
	return snap
}
