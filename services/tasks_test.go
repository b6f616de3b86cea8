package services

import (
	"testing"

	"huntian-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusAt(t *testing.T) {
	task := models.AGVTask{From: 1, To: 2, StartTime: 2, EndTime: 5}

	tests := []struct {
		time float64
		want models.TaskStatus
	}{
		{0, models.TaskPending},
		{1.99, models.TaskPending},
		{2, models.TaskActive},
		{3.5, models.TaskActive},
		{5, models.TaskActive},
		{5.01, models.TaskCompleted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TaskStatusAt(task, tt.time), "t=%v", tt.time)
	}
}

func TestResolveTask_ActiveInterpolatesBetweenStations(t *testing.T) {
	lookup := LookupFromIndex(testDataset().StationIndex())
	task := models.AGVTask{From: 1, To: 2, StartTime: 0, EndTime: 4}

	res := ResolveTask(task, 1, lookup)
	assert.Equal(t, models.TaskActive, res.Status)
	assert.False(t, res.Skipped)
	assert.InDelta(t, 0.25, res.Progress, 1e-9)
	assert.InDelta(t, 2.5, res.Position.X(), 1e-9)
	assert.InDelta(t, 0, res.Position.Y(), 1e-9)
}

func TestResolveTask_DanglingStationIsSkipped(t *testing.T) {
	lookup := LookupFromIndex(testDataset().StationIndex())
	task := models.AGVTask{From: 1, To: 99, StartTime: 0, EndTime: 4}

	res := ResolveTask(task, 2, lookup)
	assert.Equal(t, models.TaskActive, res.Status)
	assert.True(t, res.Skipped)
}

func TestResolveTask_ZeroSpanIsComplete(t *testing.T) {
	lookup := LookupFromIndex(testDataset().StationIndex())
	task := models.AGVTask{From: 1, To: 2, StartTime: 3, EndTime: 3}

	res := ResolveTask(task, 3, lookup)
	assert.Equal(t, models.TaskActive, res.Status)
	assert.Equal(t, 1.0, res.Progress)
	assert.Equal(t, models.Waypoint{10, 0}, res.Position)
}

func TestResolveTask_PendingAndCompletedSkipInterpolation(t *testing.T) {
	lookup := LookupFromIndex(testDataset().StationIndex())
	task := models.AGVTask{From: 1, To: 2, StartTime: 3, EndTime: 6}

	assert.Equal(t, TaskResolution{Status: models.TaskPending}, ResolveTask(task, 1, lookup))
	assert.Equal(t, TaskResolution{Status: models.TaskCompleted}, ResolveTask(task, 7, lookup))
}
