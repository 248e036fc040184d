// internal/app/app.go
// Package app 负责装配:配置、数据库、调度器、模拟器、监控与 HTTP 服务。
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelac/api"
	"hotelac/internal/ac"
	"hotelac/internal/auth"
	"hotelac/internal/billing"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/dispatcher"
	"hotelac/internal/events"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/internal/monitor"
	"hotelac/internal/room"
	"hotelac/internal/simulator"
	"hotelac/internal/types"
	"hotelac/server"
)

// App 系统装配体,持有唯一的调度器实例
type App struct {
	cfg  *config.Config
	disp *dispatcher.Dispatcher
	sim  *simulator.Simulator
	mon  *monitor.Monitor
	srv  *server.Server
}

// New 按配置装配整个系统
func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	gdb, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureUsers(gdb); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}

	bus := events.NewBus()
	disp := dispatcher.New(cfg, bus)

	roomRepo := db.NewRoomRepository(gdb)
	if err := loadRooms(cfg, disp, roomRepo); err != nil {
		return nil, err
	}
	disp.SetRepo(roomRepo)
	disp.Restore()

	acSvc := ac.NewService(cfg, disp, bus)
	billingSvc := billing.NewService(disp, acSvc,
		db.NewDetailRepository(gdb), db.NewBillRepository(gdb), bus)
	authSvc := auth.NewService(cfg, db.NewUserRepository(gdb))
	mon := monitor.New(cfg, disp, bus)

	router := api.SetupRouter(api.Handlers{
		AC:      handlers.NewACHandler(acSvc),
		Room:    handlers.NewRoomHandler(billingSvc),
		Auth:    handlers.NewAuthHandler(authSvc),
		Monitor: handlers.NewMonitorHandler(mon),
		WS:      handlers.NewWSHandler(mon),
	}, authSvc)

	return &App{
		cfg:  cfg,
		disp: disp,
		sim:  simulator.New(cfg, disp),
		mon:  mon,
		srv:  server.New(router, cfg.Server.Host, cfg.Server.Port),
	}, nil
}

// loadRooms 首次启动按配置建房,此后从快照恢复
func loadRooms(cfg *config.Config, disp *dispatcher.Dispatcher, repo *db.RoomRepository) error {
	records, err := repo.LoadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		speed, _ := types.ParseSpeed(cfg.AC.DefaultSpeed)
		for _, seed := range cfg.Rooms {
			s := room.New(seed.RoomID, seed.InitialTemp, seed.DailyRate, cfg.AC.DefaultTarget, speed)
			disp.AddRoom(s)
			if err := repo.Save(s); err != nil {
				return err
			}
			logger.Info("创建房间 %s,初始温度 %.1f°C,房价 %.0f 元/晚", s.RoomID, s.InitialTemp, s.DailyRate)
		}
		return nil
	}
	for i := range records {
		disp.AddRoom(records[i].ToState())
	}
	logger.Info("从快照恢复 %d 个房间", len(records))
	return nil
}

// Run 启动全部循环并阻塞至收到退出信号
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.sim.Run(ctx)
	go a.mon.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("收到信号 %v,开始关闭", sig)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := a.srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("关闭完成")
	return nil
}
