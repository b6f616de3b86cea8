package services

import (
	"testing"

	"huntian-backend/algorithms"
	"huntian-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannerFixture(t *testing.T) (*algorithms.Grid, map[int]models.Station) {
	t.Helper()
	grid, err := algorithms.NewGrid(10, 10, 10)
	require.NoError(t, err)

	stations := (&models.SimulationDataset{Stations: []models.Station{
		{ID: 1, Position: models.Waypoint{0, 0}},
		{ID: 2, Position: models.Waypoint{90, 0}},
		{ID: 3, Position: models.Waypoint{90, 90}},
		{ID: 4, Position: models.Waypoint{13, 4}},
	}}).StationIndex()
	return grid, stations
}

func TestPlanRoute_ChainsTasks(t *testing.T) {
	grid, stations := plannerFixture(t)
	tasks := []models.AGVTask{
		{From: 1, To: 2, StartTime: 0, EndTime: 5},
		{From: 2, To: 3, StartTime: 5, EndTime: 12},
	}

	route, err := PlanRoute(grid, stations, 7, tasks, 0)
	require.NoError(t, err)

	assert.Equal(t, 7, route.AGVID)
	assert.Equal(t, []models.Waypoint{{0, 0}, {90, 0}, {90, 90}}, route.Route)
	assert.Equal(t, 12.0, route.CompletionTime)
	assert.Equal(t, tasks, route.Tasks)
}

func TestPlanRoute_ExplicitCompletionTime(t *testing.T) {
	grid, stations := plannerFixture(t)
	tasks := []models.AGVTask{{From: 1, To: 2, StartTime: 0, EndTime: 5}}

	route, err := PlanRoute(grid, stations, 1, tasks, 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, route.CompletionTime)
}

func TestPlanRoute_SnapsToStationPositions(t *testing.T) {
	grid, stations := plannerFixture(t)
	tasks := []models.AGVTask{{From: 4, To: 2, StartTime: 0, EndTime: 5}}

	route, err := PlanRoute(grid, stations, 1, tasks, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(route.Route), 2)
	assert.Equal(t, models.Waypoint{13, 4}, route.Route[0])
	assert.Equal(t, models.Waypoint{90, 0}, route.Route[len(route.Route)-1])
}

func TestPlanRoute_SameStationKeepsTwoPoints(t *testing.T) {
	grid, stations := plannerFixture(t)
	tasks := []models.AGVTask{{From: 1, To: 1, StartTime: 0, EndTime: 5}}

	route, err := PlanRoute(grid, stations, 1, tasks, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Waypoint{{0, 0}, {0, 0}}, route.Route)
}

func TestPlanRoute_Errors(t *testing.T) {
	grid, stations := plannerFixture(t)

	_, err := PlanRoute(grid, stations, 1, nil, 0)
	assert.ErrorIs(t, err, models.ErrNoTasks)

	_, err = PlanRoute(grid, stations, 1, []models.AGVTask{{From: 1, To: 42}}, 0)
	assert.ErrorIs(t, err, models.ErrUnknownStation)

	// x=5 열 전체를 막으면 1 → 2 경로가 없다
	for y := 0; y < grid.Height; y++ {
		grid.AddObstacle(5, y)
	}
	_, err = PlanRoute(grid, stations, 1, []models.AGVTask{{From: 1, To: 2}}, 0)
	assert.ErrorIs(t, err, models.ErrNoPath)
}
