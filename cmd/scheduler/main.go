package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/config"
	"github.com/benbakka/imtilak2-sub000/internal/httpserver"
	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/pkg/db"
	"github.com/benbakka/imtilak2-sub000/pkg/logger"
	"github.com/benbakka/imtilak2-sub000/pkg/mq"
)

const (
	routingKeyDelayed  = "schedule.delayed"
	routingKeyImminent = "schedule.imminent"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting site-scheduler...",
		zap.Int("interval_seconds", cfg.Schedule.IntervalSeconds),
		zap.Int("imminent_horizon_days", cfg.Schedule.ImminentHorizonDays),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	scheduleRepo := repository.NewScheduleRepository(dbConn, log)
	scanner := schedule.NewScanner(scheduleRepo, schedule.NewRealClock(), log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: httpserver.NewHealthRouter(log, dbConn, publisher.IsConnected),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Health server failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runScanLoop(ctx, cfg, scanner, publisher, log)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down site-scheduler gracefully...")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown error", zap.Error(err))
	}

	log.Info("site-scheduler shutdown complete")
}

// runScanLoop scans once at startup, then on every tick until ctx is
// cancelled. Each alert is published as its own event so a consumer crash
// mid-batch loses at most one notification.
func runScanLoop(ctx context.Context, cfg *config.Config, scanner *schedule.Scanner, publisher *mq.Publisher, log *zap.Logger) {
	interval := time.Duration(cfg.Schedule.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scanAndPublish(ctx, cfg, scanner, publisher, log)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scanAndPublish(ctx, cfg, scanner, publisher, log)
		}
	}
}

func scanAndPublish(ctx context.Context, cfg *config.Config, scanner *schedule.Scanner, publisher *mq.Publisher, log *zap.Logger) {
	scanCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	alerts, err := scanner.Scan(scanCtx, cfg.Schedule.ImminentHorizonDays, "poll")
	if err != nil {
		log.Error("Schedule scan failed", zap.Error(err))
		return
	}

	published := 0
	for _, alert := range alerts {
		key := routingKeyDelayed
		if alert.Kind == model.AlertKindImminent {
			key = routingKeyImminent
		}
		if err := publisher.Publish(key, alert); err != nil {
			log.Error("Failed to publish schedule alert",
				zap.String("routing_key", key),
				zap.Int64("team_assignment_id", alert.TeamAssignmentID),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	log.Info("Schedule scan complete",
		zap.Int("alerts", len(alerts)),
		zap.Int("published", published),
	)
}
