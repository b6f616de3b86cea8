package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"huntian-backend/algorithms"
	"huntian-backend/models"
	"huntian-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, services.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type testServer struct {
	app  *fiber.App
	ctrl *services.TimelineController
	sim  *SimulationHandler
	logs *services.LogBuffer
}

func newTestServer(t *testing.T, db *gorm.DB) *testServer {
	t.Helper()
	ctrl := services.NewTimelineController()
	hub := NewClientHub()

	var runs *services.RunStore
	var logBuffer *services.LogBuffer
	if db != nil {
		runs = services.NewRunStore(db)
		logBuffer = services.NewLogBuffer(db, 1000, time.Hour)
		t.Cleanup(logBuffer.Stop)
	}

	sim := NewSimulationHandler(ctrl, hub, runs, logBuffer, 42)
	app := fiber.New()
	api := app.Group("/api")
	sim.Register(api.Group("/simulation"))
	api.Post("/routes/plan", sim.HandlePlanRoute)
	NewLogsHandler(db).Register(api.Group("/logs"))

	return &testServer{app: app, ctrl: ctrl, sim: sim, logs: logBuffer}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

const datasetJSON = `{
	"stations": [
		{"id": 1, "name": "A", "position": [0, 0], "utilization": 50},
		{"id": 2, "name": "B", "position": [10, 0], "utilization": 80},
		{"id": 3, "name": "C", "position": [10, 10]}
	],
	"routes": [
		{"agvId": 1, "route": [[0, 0], [10, 0], [10, 10]], "completionTime": 10,
		 "tasks": [{"from": 1, "to": 2, "startTime": 0, "endTime": 5}, {"from": 2, "to": 3, "startTime": 5, "endTime": 10}]}
	],
	"conflicts": [{"id": "C-001", "position": [5, 5], "time": 5, "severity": "warning", "involvedAGVs": [1]}],
	"markers": [{"time": 5, "label": "half", "type": "milestone"}]
}`

func TestSimulationControl(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "POST", "/api/simulation/runs?name=upload", datasetJSON)
	require.Equal(t, fiber.StatusCreated, status)
	run := body["run"].(map[string]interface{})
	assert.Equal(t, "upload", run["name"])
	assert.Equal(t, float64(2), run["task_count"])

	status, body = s.do(t, "POST", "/api/simulation/play", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["snapshot"].(map[string]interface{})["isPlaying"])

	status, body = s.do(t, "POST", "/api/simulation/seek", map[string]float64{"time": 7.5})
	require.Equal(t, fiber.StatusOK, status)
	snap := body["snapshot"].(map[string]interface{})
	assert.Equal(t, 7.5, snap["currentTime"])
	assert.Equal(t, []interface{}{10.0, 5.0}, snap["positions"].(map[string]interface{})["1"])

	status, body = s.do(t, "POST", "/api/simulation/speed", map[string]float64{"speed": 0})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, services.MinSpeed, body["snapshot"].(map[string]interface{})["speed"])

	status, _ = s.do(t, "POST", "/api/simulation/pause", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, s.ctrl.Clock().IsPlaying)

	status, body = s.do(t, "POST", "/api/simulation/reset", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "idle", body["snapshot"].(map[string]interface{})["state"])
}

func TestSimulationControl_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "POST", "/api/simulation/seek", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = s.do(t, "POST", "/api/simulation/speed", "{broken")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, "POST", "/api/simulation/runs", "{broken")
	assert.Equal(t, fiber.StatusBadRequest, status)

	_, err := s.sim.applyControl(models.ControlCommand{Action: "rewind"})
	assert.ErrorIs(t, err, models.ErrUnknownAction)
}

func TestSnapshotAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, "POST", "/api/simulation/runs", datasetJSON)
	s.ctrl.Seek(5)

	status, body := s.do(t, "GET", "/api/simulation/snapshot", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 5.0, body["currentTime"])
	assert.Equal(t, "active", body["conflictVisibility"].(map[string]interface{})["C-001"])

	status, body = s.do(t, "GET", "/api/simulation/metrics", nil)
	require.Equal(t, fiber.StatusOK, status)
	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, 10.0, metrics["totalCompletionTime"])
	assert.Equal(t, 80.0, metrics["bottleneckUtilization"])
	assert.Equal(t, 50.0, metrics["avgAGVUtilization"])
	assert.Equal(t, "10s", body["completion_time"])
}

func TestRunsRequireDatabase(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, "GET", "/api/simulation/runs", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	status, _ = s.do(t, "GET", "/api/logs/recent", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestRunsLifecycle(t *testing.T) {
	s := newTestServer(t, newTestDB(t))

	status, body := s.do(t, "POST", "/api/simulation/runs?name=first", datasetJSON)
	require.Equal(t, fiber.StatusCreated, status)
	firstID := body["run"].(map[string]interface{})["id"].(string)

	status, body = s.do(t, "POST", "/api/simulation/demo?seed=3", nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "demo-3", body["run"].(map[string]interface{})["name"])
	assert.NotEqual(t, firstID, s.ctrl.Snapshot().RunID)

	status, body = s.do(t, "GET", "/api/simulation/runs", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = s.do(t, "GET", "/api/simulation/runs/"+firstID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["dataset"].(map[string]interface{})["stations"], 3)

	status, body = s.do(t, "POST", "/api/simulation/runs/"+firstID+"/activate", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, firstID, body["snapshot"].(map[string]interface{})["runId"])
	assert.Equal(t, firstID, s.ctrl.Snapshot().RunID)

	status, _ = s.do(t, "GET", "/api/simulation/runs/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = s.do(t, "POST", "/api/simulation/runs/missing/activate", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do(t, "POST", "/api/simulation/demo?seed=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDemo_RejectsOversizedRequests(t *testing.T) {
	s := newTestServer(t, nil)
	before := s.ctrl.Snapshot().RunID

	for _, query := range []string{
		"agvs=51",
		"tasks=51",
		"stations=101",
		"agvs=200&tasks=200",
	} {
		status, body := s.do(t, "POST", "/api/simulation/demo?"+query, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, query)
		assert.Equal(t, false, body["success"], query)
		assert.Contains(t, body["error"], "demo dataset too large", query)
	}
	assert.Equal(t, before, s.ctrl.Snapshot().RunID)

	status, body := s.do(t, "POST", "/api/simulation/demo?seed=1&agvs=2&stations=4&tasks=2", nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Len(t, body["dataset"].(map[string]interface{})["routes"], 2)
}

func TestLogsEndpoints(t *testing.T) {
	s := newTestServer(t, newTestDB(t))
	s.do(t, "POST", "/api/simulation/runs", datasetJSON)
	s.do(t, "POST", "/api/simulation/play", nil)
	s.do(t, "POST", "/api/simulation/seek", map[string]float64{"time": 3})
	s.logs.Flush()

	runID := s.ctrl.Snapshot().RunID

	status, body := s.do(t, "GET", "/api/logs/recent?run_id="+runID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["count"]) // run_loaded + play + seek

	status, body = s.do(t, "GET", "/api/logs/type?event_type=control&run_id="+runID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = s.do(t, "GET", "/api/logs/stats?run_id="+runID, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total_logs"])

	status, body = s.do(t, "GET", "/api/logs/range?run_id="+runID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])

	status, _ = s.do(t, "GET", "/api/logs/type", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = s.do(t, "GET", "/api/logs/range?start=yesterday", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPlanRoute(t *testing.T) {
	s := newTestServer(t, nil)

	req := RoutePlanRequest{
		AGVID: 3,
		Tasks: []models.AGVTask{{From: 1, To: 2, StartTime: 0, EndTime: 6}},
		Stations: []models.Station{
			{ID: 1, Position: models.Waypoint{0, 0}},
			{ID: 2, Position: models.Waypoint{40, 0}},
		},
		Grid: &GridSpec{Width: 5, Height: 5, CellSize: 10},
	}

	status, body := s.do(t, "POST", "/api/routes/plan", req)
	require.Equal(t, fiber.StatusOK, status)
	route := body["route"].(map[string]interface{})
	assert.Equal(t, float64(3), route["agvId"])
	assert.Equal(t, 6.0, route["completionTime"])
	assert.Equal(t, []interface{}{[]interface{}{0.0, 0.0}, []interface{}{40.0, 0.0}}, route["route"])

	req.Tasks = []models.AGVTask{{From: 1, To: 9}}
	status, body = s.do(t, "POST", "/api/routes/plan", req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	req.Tasks = []models.AGVTask{{From: 1, To: 2}}
	for y := 0; y < 5; y++ {
		req.Grid.Obstacles = append(req.Grid.Obstacles, algorithms.Cell{X: 2, Y: y})
	}
	status, _ = s.do(t, "POST", "/api/routes/plan", req)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	req.Grid = &GridSpec{Width: 0, Height: 5}
	status, _ = s.do(t, "POST", "/api/routes/plan", req)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
