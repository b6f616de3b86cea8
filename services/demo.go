package services

import (
	"fmt"
	"math"
	"math/rand"

	"huntian-backend/algorithms"
	"huntian-backend/models"
)

// DemoOptions - 데모 데이터셋 생성 옵션
type DemoOptions struct {
	Seed        int64
	Stations    int
	AGVs        int
	TasksPerAGV int
}

// 데모 규모 상한 (충돌 탐색이 AGV*작업 수의 제곱으로 커진다)
const (
	MaxDemoStations    = 100
	MaxDemoAGVs        = 50
	MaxDemoTasksPerAGV = 50
)

// 데모 시설 크기 (월드 좌표)
const (
	demoWidth    = 1200.0
	demoHeight   = 800.0
	demoCellSize = 40.0
)

var demoTaskCycle = []models.TaskType{models.TaskPickup, models.TaskTransport, models.TaskUnload}

var demoStationTypes = []models.StationType{
	models.StationLoading, models.StationProcessing, models.StationProcessing,
	models.StationStorage, models.StationUnloading,
}

// DefaultDemoOptions - 데모 화면 기본값
func DefaultDemoOptions(seed int64) DemoOptions {
	return DemoOptions{Seed: seed, Stations: 6, AGVs: 3, TasksPerAGV: 4}
}

// CheckLimits - 상한을 넘는 옵션은 ErrDemoTooLarge
func (o DemoOptions) CheckLimits() error {
	switch {
	case o.Stations > MaxDemoStations:
		return fmt.Errorf("%w: stations %d > %d", models.ErrDemoTooLarge, o.Stations, MaxDemoStations)
	case o.AGVs > MaxDemoAGVs:
		return fmt.Errorf("%w: agvs %d > %d", models.ErrDemoTooLarge, o.AGVs, MaxDemoAGVs)
	case o.TasksPerAGV > MaxDemoTasksPerAGV:
		return fmt.Errorf("%w: tasks %d > %d", models.ErrDemoTooLarge, o.TasksPerAGV, MaxDemoTasksPerAGV)
	}
	return nil
}

// normalize - 각 값을 [최소, 상한] 범위로 보정
func (o DemoOptions) normalize() DemoOptions {
	o.Stations = clampInt(o.Stations, 2, MaxDemoStations)
	o.AGVs = clampInt(o.AGVs, 1, MaxDemoAGVs)
	o.TasksPerAGV = clampInt(o.TasksPerAGV, 1, MaxDemoTasksPerAGV)
	return o
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DemoGrid - 중앙 설비 블록이 막혀 있는 데모 시설 그리드
func DemoGrid() *algorithms.Grid {
	cols := int(demoWidth/demoCellSize) + 1
	rows := int(demoHeight/demoCellSize) + 1
	grid, _ := algorithms.NewGrid(cols, rows, demoCellSize)

	// 중앙 가공 설비 (통과 불가)
	for x := cols/2 - 3; x <= cols/2+3; x++ {
		for y := rows/2 - 2; y <= rows/2+2; y++ {
			grid.AddObstacle(x, y)
		}
	}
	return grid
}

// GenerateDemoDataset - 시드 기반 데모 데이터셋 생성
//
// Station 은 중앙 설비를 둘러싼 타원 위에 놓이고, 각 AGV 는 연속된 운반
// 작업을 수행한다. 같은 Station 으로 동시에 향하는 작업 쌍은 충돌로 기록된다.
func GenerateDemoDataset(opts DemoOptions) (*models.SimulationDataset, error) {
	opts = opts.normalize()

	rng := rand.New(rand.NewSource(opts.Seed))
	grid := DemoGrid()

	ds := &models.SimulationDataset{
		Stations:  generateStations(rng, grid, opts.Stations),
		Conflicts: []models.ConflictPoint{},
		Markers:   []models.TimelineMarker{},
	}
	index := ds.StationIndex()

	for agv := 1; agv <= opts.AGVs; agv++ {
		tasks := generateTasks(rng, opts.Stations, opts.TasksPerAGV)
		route, err := PlanRoute(grid, index, agv, tasks, 0)
		if err != nil {
			return nil, fmt.Errorf("demo route planning failed: %w", err)
		}
		ds.Routes = append(ds.Routes, route)
	}

	ds.Conflicts = findDemoConflicts(ds.Routes, index)
	ds.Markers = demoMarkers(ds.TotalDuration(), ds.Conflicts)
	return ds, nil
}

func generateStations(rng *rand.Rand, grid *algorithms.Grid, count int) []models.Station {
	stations := make([]models.Station, 0, count)
	cx, cy := demoWidth/2, demoHeight/2
	rx, ry := demoWidth*0.4, demoHeight*0.4

	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		raw := models.Waypoint{cx + rx*math.Cos(angle), cy + ry*math.Sin(angle)}
		// 그리드 셀 중심에 맞춘다
		pos := grid.WorldOf(grid.CellOf(raw))

		util := math.Round((40+rng.Float64()*55)*10) / 10 // 40~95%
		status := models.StationBusy
		switch {
		case util < 55:
			status = models.StationIdle
		case util > 90:
			status = models.StationBlocked
		}

		stations = append(stations, models.Station{
			ID:          i + 1,
			Name:        fmt.Sprintf("WS-%02d", i+1),
			Position:    pos,
			Utilization: &util,
			Status:      status,
			Type:        demoStationTypes[i%len(demoStationTypes)],
		})
	}
	return stations
}

func generateTasks(rng *rand.Rand, stationCount, count int) []models.AGVTask {
	tasks := make([]models.AGVTask, 0, count)
	t := float64(rng.Intn(5))
	from := rng.Intn(stationCount) + 1

	for i := 0; i < count; i++ {
		to := rng.Intn(stationCount-1) + 1
		if to >= from {
			to++
		}
		duration := 8 + float64(rng.Intn(13)) // 8~20s
		tasks = append(tasks, models.AGVTask{
			From:      from,
			To:        to,
			StartTime: t,
			EndTime:   t + duration,
			Type:      demoTaskCycle[i%len(demoTaskCycle)],
		})
		t += duration + 1 + float64(rng.Intn(3))
		from = to
	}
	return tasks
}

// findDemoConflicts - 같은 목적지로 시간이 겹치는 두 작업을 충돌로 본다
func findDemoConflicts(routes []models.AGVRoute, stations map[int]models.Station) []models.ConflictPoint {
	conflicts := []models.ConflictPoint{}
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			for _, a := range routes[i].Tasks {
				for _, b := range routes[j].Tasks {
					if a.To != b.To {
						continue
					}
					start := math.Max(a.StartTime, b.StartTime)
					end := math.Min(a.EndTime, b.EndTime)
					if start >= end {
						continue
					}

					severity := models.SeverityWarning
					if end-start > 5 {
						severity = models.SeverityCritical
					}
					conflicts = append(conflicts, models.ConflictPoint{
						ID:           fmt.Sprintf("C-%03d", len(conflicts)+1),
						Position:     stations[a.To].Position,
						Time:         (start + end) / 2,
						Severity:     severity,
						InvolvedAGVs: []int{routes[i].AGVID, routes[j].AGVID},
						Resolution:   fmt.Sprintf("AGV %d yields to AGV %d at %s", routes[j].AGVID, routes[i].AGVID, stations[a.To].Name),
					})
				}
			}
		}
	}
	return conflicts
}

func demoMarkers(total float64, conflicts []models.ConflictPoint) []models.TimelineMarker {
	markers := make([]models.TimelineMarker, 0, 4+len(conflicts))
	for _, pct := range []float64{25, 50, 75, 100} {
		markers = append(markers, models.TimelineMarker{
			Time:  total * pct / 100,
			Label: fmt.Sprintf("%.0f%% of plan", pct),
			Type:  models.MarkerMilestone,
		})
	}
	for _, c := range conflicts {
		markers = append(markers, models.TimelineMarker{
			Time:  c.Time,
			Label: "conflict " + c.ID,
			Type:  models.MarkerConflict,
		})
	}
	return markers
}
