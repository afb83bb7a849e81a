package main

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/streamfest/station-booking/internal/booking"
	"github.com/streamfest/station-booking/internal/config"
	"github.com/streamfest/station-booking/internal/database"
	"github.com/streamfest/station-booking/internal/handler"
	"github.com/streamfest/station-booking/internal/lock"
	"github.com/streamfest/station-booking/internal/model"
	"github.com/streamfest/station-booking/internal/queue"
	"github.com/streamfest/station-booking/internal/repository"
	"github.com/streamfest/station-booking/internal/router"
	queue_publisher "github.com/streamfest/station-booking/internal/service"
)

// bookingLockKey is the Redis key of the single lock serializing all
// ledger and audit mutations.
const bookingLockKey = "station-booking:ledger-lock"

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		// The Redis lock is the only mutual exclusion across server
		// processes; refusing to start beats double bookings.
		logger.Fatal("connect redis", zap.Error(err))
	}

	window, err := model.NewWindow(cfg.WindowStart, cfg.WindowEnd)
	if err != nil {
		logger.Fatal("invalid event window", zap.Error(err))
	}

	svc := booking.NewService(booking.ServiceParams{
		Ledger:    repository.NewLedgerRepo(db),
		Audit:     repository.NewAuditRepo(db),
		Lock:      lock.NewBookingLock(rdb, bookingLockKey, cfg.LockTTL, cfg.LockTimeout),
		Publisher: queue_publisher.New(cfg.AMQPURL),
		Stations:  cfg.Stations,
		Window:    window,
		AdminHash: cfg.AdminPasswordHash,
		Logger:    logger,
	})

	go func() {
		if err := queue.StartBookingConsumer(cfg.AMQPURL, logger); err != nil {
			logger.Warn("booking consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterBooking(e,
		handler.NewBookingHandler(svc),
		handler.NewScheduleHandler(svc),
		handler.NewAuditHandler(svc),
	)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
