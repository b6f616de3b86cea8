package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"huntian-backend/algorithms"
	"huntian-backend/models"
	"huntian-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SimulationHandler - 타임라인 제어, run 관리, 경로 계획 API
type SimulationHandler struct {
	ctrl     *services.TimelineController
	hub      *ClientHub
	runs     *services.RunStore  // DB 가 없으면 nil
	logs     *services.LogBuffer // DB 가 없으면 nil
	grid     *algorithms.Grid
	demoSeed int64
}

// NewSimulationHandler - 핸들러 생성. runs/logs 는 nil 이어도 된다.
func NewSimulationHandler(ctrl *services.TimelineController, hub *ClientHub, runs *services.RunStore, logs *services.LogBuffer, demoSeed int64) *SimulationHandler {
	return &SimulationHandler{
		ctrl:     ctrl,
		hub:      hub,
		runs:     runs,
		logs:     logs,
		grid:     services.DemoGrid(),
		demoSeed: demoSeed,
	}
}

// Register - /api/simulation 라우트 등록
func (h *SimulationHandler) Register(rg fiber.Router) {
	rg.Get("/snapshot", h.HandleGetSnapshot)
	rg.Get("/metrics", h.HandleGetMetrics)

	rg.Post("/play", h.controlAction(models.ActionPlay))
	rg.Post("/pause", h.controlAction(models.ActionPause))
	rg.Post("/reset", h.controlAction(models.ActionReset))
	rg.Post("/seek", h.HandleSeek)
	rg.Post("/speed", h.HandleSpeed)

	rg.Post("/runs", h.HandleCreateRun)
	rg.Get("/runs", h.HandleListRuns)
	rg.Get("/runs/:id", h.HandleGetRun)
	rg.Post("/runs/:id/activate", h.HandleActivateRun)
	rg.Post("/demo", h.HandleDemo)
}

// applyControl - 제어 명령을 컨트롤러에 적용하고 로그를 남긴다
func (h *SimulationHandler) applyControl(cmd models.ControlCommand) (models.Snapshot, error) {
	var snap models.Snapshot
	switch cmd.Action {
	case models.ActionPlay:
		snap = h.ctrl.Play()
	case models.ActionPause:
		snap = h.ctrl.Pause()
	case models.ActionSeek:
		snap = h.ctrl.Seek(cmd.Value)
	case models.ActionSpeed:
		snap = h.ctrl.SetSpeed(cmd.Value)
	case models.ActionReset:
		snap = h.ctrl.Reset()
	default:
		return models.Snapshot{}, fmt.Errorf("%w: %q", models.ErrUnknownAction, cmd.Action)
	}

	if h.logs != nil {
		h.logs.LogControl(snap.RunID, cmd, h.ctrl.Clock())
	}
	return snap, nil
}

// activate - run 의 데이터셋을 컨트롤러에 로드하고 알린다
func (h *SimulationHandler) activate(run *models.SimulationRun, ds *models.SimulationDataset) models.Snapshot {
	snap := h.ctrl.Load(run.ID, ds)
	h.hub.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeRunLoaded, Data: run})
	if h.logs != nil {
		h.logs.LogRunLoaded(run)
	}
	return snap
}

// register - DB 가 있으면 저장, 없으면 메모리에만 둔다
func (h *SimulationHandler) register(name, source string, ds *models.SimulationDataset) (*models.SimulationRun, error) {
	if h.runs == nil {
		return services.NewRun(name, source, ds)
	}
	return h.runs.Create(name, source, ds)
}

// LoadDataset - 시작 시 파일/데모 데이터셋 로드용
func (h *SimulationHandler) LoadDataset(name, source string, ds *models.SimulationDataset) (*models.SimulationRun, error) {
	run, err := h.register(name, source, ds)
	if err != nil {
		return nil, err
	}
	h.activate(run, ds)
	return run, nil
}

// HandleGetSnapshot - 현재 스냅샷
func (h *SimulationHandler) HandleGetSnapshot(c *fiber.Ctx) error {
	return c.JSON(h.ctrl.Snapshot())
}

// HandleGetMetrics - 현재 시각의 성능 지표
func (h *SimulationHandler) HandleGetMetrics(c *fiber.Ctx) error {
	snap := h.ctrl.Snapshot()
	return c.JSON(fiber.Map{
		"success":         true,
		"run_id":          snap.RunID,
		"current_time":    snap.CurrentTime,
		"metrics":         snap.Metrics,
		"completion_time": services.FormatDuration(snap.Metrics.TotalCompletionTime),
	})
}

func (h *SimulationHandler) controlAction(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.respondControl(c, models.ControlCommand{Action: action})
	}
}

// HandleSeek - {"time": 초}
func (h *SimulationHandler) HandleSeek(c *fiber.Ctx) error {
	var req struct {
		Time *float64 `json:"time"`
	}
	if err := c.BodyParser(&req); err != nil || req.Time == nil {
		return badRequest(c, "time (seconds) is required")
	}
	return h.respondControl(c, models.ControlCommand{Action: models.ActionSeek, Value: *req.Time})
}

// HandleSpeed - {"speed": 배속}
func (h *SimulationHandler) HandleSpeed(c *fiber.Ctx) error {
	var req struct {
		Speed *float64 `json:"speed"`
	}
	if err := c.BodyParser(&req); err != nil || req.Speed == nil {
		return badRequest(c, "speed is required")
	}
	return h.respondControl(c, models.ControlCommand{Action: models.ActionSpeed, Value: *req.Speed})
}

func (h *SimulationHandler) respondControl(c *fiber.Ctx, cmd models.ControlCommand) error {
	snap, err := h.applyControl(cmd)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"snapshot": snap,
	})
}

// HandleCreateRun - 요청 본문의 데이터셋을 새 run 으로 저장하고 활성화
func (h *SimulationHandler) HandleCreateRun(c *fiber.Ctx) error {
	ds, err := services.ParseDataset(c.Body())
	if err != nil {
		return badRequest(c, "잘못된 데이터셋 형식입니다")
	}

	run, err := h.LoadDataset(c.Query("name"), models.RunSourceUpload, ds)
	if err != nil {
		return errorResponse(c, err)
	}
	log.Printf("📥 데이터셋 업로드: %s (%d routes)", run.Name, run.RouteCount)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"run":      run,
		"snapshot": h.ctrl.Snapshot(),
	})
}

// HandleListRuns - 저장된 run 목록
func (h *SimulationHandler) HandleListRuns(c *fiber.Ctx) error {
	if h.runs == nil {
		return errorResponse(c, models.ErrNoDatabase)
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(runs),
		"runs":    runs,
	})
}

// HandleGetRun - run 1건과 데이터셋
func (h *SimulationHandler) HandleGetRun(c *fiber.Ctx) error {
	if h.runs == nil {
		return errorResponse(c, models.ErrNoDatabase)
	}
	run, err := h.runs.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	ds, err := h.runs.Dataset(run)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"run":     run,
		"dataset": ds,
	})
}

// HandleActivateRun - 저장된 run 을 다시 로드
func (h *SimulationHandler) HandleActivateRun(c *fiber.Ctx) error {
	if h.runs == nil {
		return errorResponse(c, models.ErrNoDatabase)
	}
	run, err := h.runs.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	ds, err := h.runs.Dataset(run)
	if err != nil {
		return errorResponse(c, err)
	}

	snap := h.activate(run, ds)
	return c.JSON(fiber.Map{
		"success":  true,
		"run":      run,
		"snapshot": snap,
	})
}

// HandleDemo - 시드 기반 데모 데이터셋 생성 후 활성화 (?seed=, ?agvs=, ?stations=, ?tasks=)
func (h *SimulationHandler) HandleDemo(c *fiber.Ctx) error {
	seed := h.demoSeed
	if s := c.Query("seed"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return badRequest(c, "seed must be an integer")
		}
		seed = parsed
	}
	opts := services.DefaultDemoOptions(seed)
	opts.AGVs = c.QueryInt("agvs", opts.AGVs)
	opts.Stations = c.QueryInt("stations", opts.Stations)
	opts.TasksPerAGV = c.QueryInt("tasks", opts.TasksPerAGV)
	if err := opts.CheckLimits(); err != nil {
		return badRequest(c, err.Error())
	}

	ds, err := services.GenerateDemoDataset(opts)
	if err != nil {
		return errorResponse(c, err)
	}
	run, err := h.LoadDataset(fmt.Sprintf("demo-%d", seed), models.RunSourceDemo, ds)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"run":      run,
		"dataset":  ds,
		"snapshot": h.ctrl.Snapshot(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// errorResponse - sentinel 에러를 HTTP 상태 코드로 변환
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrRunNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrNoDatabase):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, models.ErrUnknownAction),
		errors.Is(err, models.ErrDemoTooLarge),
		errors.Is(err, models.ErrUnknownStation),
		errors.Is(err, models.ErrInvalidGrid),
		errors.Is(err, models.ErrNoTasks):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrNoPath):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ 요청 처리 실패: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
