package services

import (
	"fmt"

	"huntian-backend/algorithms"
	"huntian-backend/models"
)

// PlanRoute - 작업 순서대로 Station 을 잇는 A* 경로로 AGVRoute 생성
//
// completionTime 이 0 이하이면 작업 종료 시각의 최댓값을 쓴다. 각 구간의
// 양 끝은 Station 의 정확한 좌표로 맞춘다.
func PlanRoute(grid *algorithms.Grid, stations map[int]models.Station, agvID int, tasks []models.AGVTask, completionTime float64) (models.AGVRoute, error) {
	if len(tasks) == 0 {
		return models.AGVRoute{}, fmt.Errorf("AGV %d: %w", agvID, models.ErrNoTasks)
	}

	stops := make([]int, 0, len(tasks)+1)
	for _, task := range tasks {
		if len(stops) == 0 || stops[len(stops)-1] != task.From {
			stops = append(stops, task.From)
		}
		stops = append(stops, task.To)
	}

	var route []models.Waypoint
	for i := 0; i+1 < len(stops); i++ {
		leg, err := planLeg(grid, stations, stops[i], stops[i+1])
		if err != nil {
			return models.AGVRoute{}, fmt.Errorf("AGV %d leg %d: %w", agvID, i, err)
		}
		for _, wp := range leg {
			if len(route) > 0 && route[len(route)-1] == wp {
				continue
			}
			route = append(route, wp)
		}
	}
	if len(route) == 1 {
		// 모든 작업이 같은 Station 에서 끝나는 경우에도 2개 이상 유지
		route = append(route, route[0])
	}

	if completionTime <= 0 {
		for _, task := range tasks {
			if task.EndTime > completionTime {
				completionTime = task.EndTime
			}
		}
	}

	return models.AGVRoute{
		AGVID:          agvID,
		Route:          route,
		CompletionTime: completionTime,
		Tasks:          tasks,
	}, nil
}

func planLeg(grid *algorithms.Grid, stations map[int]models.Station, fromID, toID int) ([]models.Waypoint, error) {
	from, ok := stations[fromID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownStation, fromID)
	}
	to, ok := stations[toID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownStation, toID)
	}

	cells, err := grid.FindPath(grid.CellOf(from.Position), grid.CellOf(to.Position))
	if err != nil {
		return nil, err
	}
	cells = algorithms.SimplifyPath(cells)

	leg := make([]models.Waypoint, len(cells))
	for i, c := range cells {
		leg[i] = grid.WorldOf(c)
	}
	leg[0] = from.Position
	leg[len(leg)-1] = to.Position
	return leg, nil
}
