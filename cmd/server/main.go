package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fleetgen/backend/api/handler"
	"github.com/fleetgen/backend/internal/config"
	"github.com/fleetgen/backend/internal/infrastructure/monitor"
	pgInfra "github.com/fleetgen/backend/internal/infrastructure/postgres"
	redisInfra "github.com/fleetgen/backend/internal/infrastructure/redis"
	"github.com/fleetgen/backend/internal/middleware"
	"github.com/fleetgen/backend/internal/router"
	"github.com/fleetgen/backend/internal/services"
	"github.com/fleetgen/backend/internal/services/bridge"
	"github.com/fleetgen/backend/internal/services/lifecycle"
	"github.com/fleetgen/backend/pkg/httpcontext"
	"github.com/fleetgen/backend/pkg/logger"
	"github.com/fleetgen/backend/repository/postgres"
	redisRepo "github.com/fleetgen/backend/repository/redis"
	generationUC "github.com/fleetgen/backend/usecase/generation"
	vehicleUC "github.com/fleetgen/backend/usecase/vehicle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pool, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	vehicleRepo := postgres.NewVehicleRepository(pool)
	eventLog := postgres.NewEventLog(pool)
	broker := redisRepo.NewBroker(redisClient)

	vehicleUseCase := vehicleUC.New(vehicleRepo, eventLog, broker, zapLogger)
	projector := vehicleUC.NewProjector(vehicleRepo, zapLogger)
	engine := generationUC.New(broker, cfg.Generation.Interval, zapLogger)
	manager.Register("generation_engine", func(ctx context.Context) error {
		if err := engine.Stop(); err != nil {
			// Not running at shutdown is the normal case.
			return nil
		}
		return nil
	})

	if cfg.Replay.OnStart {
		replayer := services.NewReplayer(eventLog, projector, zapLogger, services.ReplayConfig{
			BatchSize: cfg.Replay.BatchSize,
		})
		if err := replayer.Run(appCtx); err != nil {
			zapLogger.Fatal("event replay failed", zap.Error(err))
		}
	}

	wsBridge := bridge.New(redisClient, zapLogger)
	wsBridge.Start()
	manager.Register("websocket_bridge", func(ctx context.Context) error {
		wsBridge.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Vehicle:    apiHandler.NewVehicleHandler(vehicleUseCase, ctxAdapter, zapLogger),
		Generation: apiHandler.NewGenerationHandler(engine, ctxAdapter, zapLogger),
		Stream:     apiHandler.NewStreamHandler(wsBridge, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
