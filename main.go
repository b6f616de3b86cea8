package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"huntian-backend/config"
	"huntian-backend/handlers"
	"huntian-backend/models"
	"huntian-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 설정 로드 실패: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB_DRIVER=none 이면 run 은 메모리에만 두고 로그는 버린다
	var db *gorm.DB
	var runStore *services.RunStore
	if cfg.Database.Enabled() {
		db, err = services.OpenDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("❌ DB 초기화 실패: %v", err)
		}
		runStore = services.NewRunStore(db)
	} else {
		log.Println("⚠️ DB 비활성화 (DB_DRIVER=none): run 목록/로그 조회 불가")
	}

	// 로그 50개마다 또는 10초마다 일괄 저장
	logBuffer := services.NewLogBuffer(db, cfg.Logging.FlushSize, cfg.Logging.FlushInterval)
	defer logBuffer.Stop() // 종료 시 남은 로그 저장

	ctrl := services.NewTimelineController()
	hub := handlers.NewClientHub()
	go hub.Run(ctx)

	// 스냅샷 구독자: WebSocket, 이벤트 감지, Redis
	ctrl.OnTick(hub.BroadcastSnapshot)
	detector := services.NewEventDetector(func(ev models.TimelineEvent) {
		hub.BroadcastEvent(ev)
		logBuffer.LogEvent(ev, ctrl.Clock().Speed)
	})
	ctrl.OnTick(detector.Observe)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("⚠️ Redis 연결 실패, 스냅샷 발행 비활성화: %v", err)
		} else {
			publisher := services.NewSnapshotPublisher(client)
			ctrl.OnTick(publisher.Enqueue)
			go publisher.Run(ctx)
			log.Printf("✅ Redis 연결 완료 (%s)", cfg.Redis.Addr)
		}
	}

	simHandler := handlers.NewSimulationHandler(ctrl, hub, runStore, logBuffer, cfg.Simulation.DemoSeed)
	logsHandler := handlers.NewLogsHandler(db)

	loadInitialDataset(cfg.Simulation, simHandler)

	go ctrl.Run(ctx, cfg.Simulation.TickInterval)

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024, // 대형 데이터셋 업로드
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("AGV 경로 시뮬레이션 서버가 실행 중입니다.")
	})

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		snap := ctrl.Snapshot()
		return c.JSON(fiber.Map{
			"status":  "OK",
			"clients": hub.GetClientCount(),
			"run_id":  snap.RunID,
			"state":   snap.State,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	simHandler.Register(api.Group("/simulation"))
	api.Post("/routes/plan", simHandler.HandlePlanRoute)
	logsHandler.Register(api.Group("/logs"))

	// WebSocket
	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/websocket/web", websocket.New(simHandler.HandleWebClientWebSocket))
	app.Get("/websocket/observer", websocket.New(simHandler.HandleObserverWebSocket))

	go func() {
		<-ctx.Done()
		log.Println("🛑 서버 종료 중...")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("⚠️ 서버 종료 오류: %v", err)
		}
	}()

	log.Printf("🚀 서버 시작: http://localhost:%s", cfg.Server.Port)
	log.Printf("📡 WebSocket: ws://localhost:%s/websocket/web", cfg.Server.Port)
	log.Printf("🎬 시뮬레이션 API: http://localhost:%s/api/simulation/*", cfg.Server.Port)
	log.Printf("💾 로그 API: GET http://localhost:%s/api/logs/*", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Printf("❌ 서버 오류: %v", err)
	}
}

// loadInitialDataset - 데이터셋 파일이 있으면 파일, 없으면 데모 데이터셋
func loadInitialDataset(cfg config.SimulationConfig, h *handlers.SimulationHandler) {
	if cfg.DatasetPath != "" {
		ds, err := services.LoadDatasetFile(cfg.DatasetPath)
		if err != nil {
			log.Printf("⚠️ %v", err)
		} else if _, err := h.LoadDataset(filepath.Base(cfg.DatasetPath), models.RunSourceFile, ds); err != nil {
			log.Printf("⚠️ 데이터셋 등록 실패: %v", err)
		} else {
			return
		}
	}

	if !cfg.LoadDemo {
		return
	}
	ds, err := services.GenerateDemoDataset(services.DefaultDemoOptions(cfg.DemoSeed))
	if err != nil {
		log.Printf("⚠️ 데모 데이터셋 생성 실패: %v", err)
		return
	}
	if _, err := h.LoadDataset("demo", models.RunSourceDemo, ds); err != nil {
		log.Printf("⚠️ 데모 데이터셋 등록 실패: %v", err)
	}
}
