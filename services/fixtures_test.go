package services

import "huntian-backend/models"

func ptr(v float64) *float64 { return &v }

// testDataset - AGV 2대, Station 3개, 충돌 1건
func testDataset() *models.SimulationDataset {
	return &models.SimulationDataset{
		Stations: []models.Station{
			{ID: 1, Name: "WS-01", Position: models.Waypoint{0, 0}, Utilization: ptr(50)},
			{ID: 2, Name: "WS-02", Position: models.Waypoint{10, 0}, Utilization: ptr(80)},
			{ID: 3, Name: "WS-03", Position: models.Waypoint{10, 10}},
		},
		Routes: []models.AGVRoute{
			{
				AGVID:          1,
				Route:          []models.Waypoint{{0, 0}, {10, 0}, {10, 10}},
				CompletionTime: 10,
				Tasks: []models.AGVTask{
					{From: 1, To: 2, StartTime: 0, EndTime: 5, Type: models.TaskPickup},
					{From: 2, To: 3, StartTime: 5, EndTime: 10, Type: models.TaskTransport},
				},
			},
			{
				AGVID:          2,
				Route:          []models.Waypoint{{0, 10}, {0, 0}},
				CompletionTime: 8,
				Tasks: []models.AGVTask{
					{From: 3, To: 1, StartTime: 2, EndTime: 8},
					{From: 1, To: 99, StartTime: 0, EndTime: 4}, // 없는 Station
				},
			},
		},
		Conflicts: []models.ConflictPoint{
			{ID: "C-001", Position: models.Waypoint{5, 5}, Time: 5, Severity: models.SeverityCritical, InvolvedAGVs: []int{1, 2}},
		},
		Markers: []models.TimelineMarker{
			{Time: 5, Label: "half", Type: models.MarkerMilestone},
		},
	}
}
