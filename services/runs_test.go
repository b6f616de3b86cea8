package services

import (
	"os"
	"path/filepath"
	"testing"

	"huntian-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_CreateAndGet(t *testing.T) {
	store := NewRunStore(newTestDB(t))
	ds := testDataset()

	run, err := store.Create("warehouse-a", models.RunSourceUpload, ds)
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, 3, run.StationCount)
	assert.Equal(t, 2, run.RouteCount)
	assert.Equal(t, 4, run.TaskCount)
	assert.Equal(t, 1, run.ConflictCount)
	assert.Equal(t, 10.0, run.TotalDuration)

	loaded, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "warehouse-a", loaded.Name)

	restored, err := store.Dataset(loaded)
	require.NoError(t, err)
	assert.Equal(t, ds, restored)
}

func TestRunStore_GetUnknown(t *testing.T) {
	store := NewRunStore(newTestDB(t))

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, models.ErrRunNotFound)
}

func TestRunStore_ListOmitsDataset(t *testing.T) {
	store := NewRunStore(newTestDB(t))
	for i := 0; i < 3; i++ {
		_, err := store.Create("", models.RunSourceDemo, testDataset())
		require.NoError(t, err)
	}

	runs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Empty(t, run.DatasetJSON)
		assert.Contains(t, run.Name, "run-")
		assert.Equal(t, 2, run.RouteCount)
	}
}

func TestRunStore_NoDatabase(t *testing.T) {
	store := NewRunStore(nil)

	_, err := store.Create("x", models.RunSourceDemo, testDataset())
	assert.ErrorIs(t, err, models.ErrNoDatabase)
	_, err = store.List(10)
	assert.ErrorIs(t, err, models.ErrNoDatabase)
}

func TestNewRun_EmptyDataset(t *testing.T) {
	run, err := NewRun("empty", models.RunSourceUpload, nil)
	require.NoError(t, err)
	assert.Zero(t, run.TotalDuration)

	ds, err := DecodeDataset(run)
	require.NoError(t, err)
	assert.Empty(t, ds.Routes)
}

func TestLoadDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	body := `{
		"stations": [{"id": 1, "name": "A", "position": [0, 0]}, {"id": 2, "name": "B", "position": [10, 0]}],
		"routes": [{"agvId": 1, "route": [[0, 0], [10, 0]], "completionTime": 20,
			"tasks": [{"from": 1, "to": 2, "startTime": 0, "endTime": 20, "type": "transport"}]}],
		"conflicts": [{"id": "C-1", "position": [5, 0], "time": 10, "severity": "warning", "involvedAGVs": [1]}],
		"markers": []
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ds, err := LoadDatasetFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Stations, 2)
	require.Len(t, ds.Routes, 1)
	assert.Equal(t, models.TaskTransport, ds.Routes[0].Tasks[0].Type)
	assert.Equal(t, 20.0, ds.TotalDuration())
	assert.Equal(t, models.SeverityWarning, ds.Conflicts[0].Severity)

	_, err = LoadDatasetFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ParseDataset([]byte("{not json"))
	assert.Error(t, err)
}
