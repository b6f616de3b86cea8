package handlers

import (
	"errors"
	"log"

	"huntian-backend/algorithms"
	"huntian-backend/models"
	"huntian-backend/services"

	"github.com/gofiber/fiber/v2"
)

type GridSpec struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	CellSize  float64           `json:"cellSize"`
	Obstacles []algorithms.Cell `json:"obstacles"`
}

type RoutePlanRequest struct {
	AGVID          int              `json:"agvId"`
	Tasks          []models.AGVTask `json:"tasks"`
	CompletionTime float64          `json:"completionTime"`
	Stations       []models.Station `json:"stations,omitempty"` // 없으면 현재 데이터셋의 Station
	Grid           *GridSpec        `json:"grid,omitempty"`     // 없으면 데모 시설 그리드
}

type RoutePlanResponse struct {
	Success bool             `json:"success"`
	Route   *models.AGVRoute `json:"route,omitempty"`
	Message string           `json:"message,omitempty"`
}

// HandlePlanRoute - 작업 목록으로 A* 경로 계획
func (h *SimulationHandler) HandlePlanRoute(c *fiber.Ctx) error {
	var req RoutePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(RoutePlanResponse{
			Success: false,
			Message: "잘못된 요청 형식입니다",
		})
	}

	grid := h.grid
	if req.Grid != nil {
		g, err := algorithms.NewGrid(req.Grid.Width, req.Grid.Height, req.Grid.CellSize)
		if err != nil {
			return planFailure(c, fiber.StatusBadRequest, err)
		}
		for _, ob := range req.Grid.Obstacles {
			g.AddObstacle(ob.X, ob.Y)
		}
		grid = g
	}

	var stations map[int]models.Station
	if len(req.Stations) > 0 {
		stations = (&models.SimulationDataset{Stations: req.Stations}).StationIndex()
	} else if snap := h.ctrl.Snapshot(); snap.Dataset != nil {
		stations = snap.Dataset.StationIndex()
	}

	log.Printf("📍 경로 계획 요청: AGV %d, 작업 %d개, 그리드 %dx%d", req.AGVID, len(req.Tasks), grid.Width, grid.Height)

	route, err := services.PlanRoute(grid, stations, req.AGVID, req.Tasks, req.CompletionTime)
	if err != nil {
		log.Printf("❌ 경로 계획 실패: %v", err)
		return planFailure(c, 0, err)
	}

	log.Printf("✅ 경로 계획 성공: %d개 웨이포인트", len(route.Route))
	return c.JSON(RoutePlanResponse{
		Success: true,
		Route:   &route,
		Message: "경로 계획 성공",
	})
}

func planFailure(c *fiber.Ctx, status int, err error) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
		switch {
		case errors.Is(err, models.ErrNoPath):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, models.ErrUnknownStation), errors.Is(err, models.ErrNoTasks):
			status = fiber.StatusBadRequest
		}
	}
	return c.Status(status).JSON(RoutePlanResponse{
		Success: false,
		Message: err.Error(),
	})
}
