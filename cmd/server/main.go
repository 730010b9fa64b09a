package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"production-manager/internal/config"
	"production-manager/internal/consumer"
	"production-manager/internal/infrastructure/logger"
	"production-manager/internal/infrastructure/mysql"
	"production-manager/internal/infrastructure/sqs"
	"production-manager/internal/production"
	"production-manager/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.App.Mode == config.ModeWorker {
		runWorker(cfg, db, zapLogger, quit)
		return
	}
	runAPI(cfg, db, zapLogger, quit)
}

// runWorker runs the SQS consumer as the sole activity, without an HTTP
// server. The process stays alive on the consumer's poll loop.
func runWorker(cfg *config.Config, db *sql.DB, zapLogger *zap.Logger, quit chan os.Signal) {
	productionSvc := production.NewService(db, zapLogger)

	var transport consumer.Transport
	if cfg.SQS.Enabled() {
		client, err := sqs.NewClient(context.Background(), cfg.SQS)
		if err != nil {
			zapLogger.Fatal("creating SQS client", zap.Error(err))
		}
		transport = client
	}

	sqsConsumer := consumer.New(transport, productionSvc, cfg.SQS, zapLogger)
	sqsConsumer.Start()
	zapLogger.Info("worker is running")

	<-quit
	zapLogger.Info("received shutdown signal")

	sqsConsumer.Shutdown()
	zapLogger.Info("worker stopped gracefully")
}

func runAPI(cfg *config.Config, db *sql.DB, zapLogger *zap.Logger, quit chan os.Signal) {
	productionSvc := production.NewService(db, zapLogger)
	productionCtrl := production.NewController(productionSvc, zapLogger)

	router := server.NewRouter(productionCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
