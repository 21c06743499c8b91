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
	"github.com/benbakka/imtilak2-sub000/internal/mqhandler"
	"github.com/benbakka/imtilak2-sub000/internal/notify"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/pkg/db"
	"github.com/benbakka/imtilak2-sub000/pkg/logger"
	"github.com/benbakka/imtilak2-sub000/pkg/mq"
	pkgredis "github.com/benbakka/imtilak2-sub000/pkg/redis"
)

const (
	delayedQueue  = "schedule.delayed.notifier"
	imminentQueue = "schedule.imminent.notifier"

	routingKeyDelayed  = "schedule.delayed"
	routingKeyImminent = "schedule.imminent"

	retentionDays = 30
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting site-notifier...")

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := pkgredis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	if err := publisher.SetupDLQ(routingKeyDelayed, routingKeyImminent); err != nil {
		log.Fatal("Failed to set up DLQ", zap.Error(err))
	}

	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	dispatcher := notify.NewDispatcher(notificationRepo, rdb, schedule.NewRealClock(), log)

	consumers := make([]*mq.Consumer, 0, 2)
	for _, binding := range []struct {
		queue      string
		routingKey string
	}{
		{delayedQueue, routingKeyDelayed},
		{imminentQueue, routingKeyImminent},
	} {
		consumer, err := mq.NewConsumer(cfg.MQ.URL, binding.queue, binding.routingKey, log)
		if err != nil {
			log.Fatal("Failed to init MQ consumer",
				zap.String("queue", binding.queue),
				zap.Error(err),
			)
		}
		handler := mqhandler.NewScheduleAlertHandler(dispatcher, publisher, binding.routingKey, log)
		consumer.SetHandler(handler.Handle)
		consumers = append(consumers, consumer)

		go func(c *mq.Consumer, queue string) {
			log.Info("Consumer starting", zap.String("queue", queue))
			if err := c.StartConsuming(); err != nil {
				log.Error("Consumer stopped", zap.String("queue", queue), zap.Error(err))
			}
		}(consumer, binding.queue)
	}

	mqReady := func() bool {
		if !publisher.IsConnected() {
			return false
		}
		for _, c := range consumers {
			if !c.IsConnected() {
				return false
			}
		}
		return true
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: httpserver.NewHealthRouter(log, dbConn, mqReady),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Health server failed", zap.Error(err))
		}
	}()

	pruneCtx, pruneCancel := context.WithCancel(context.Background())
	defer pruneCancel()
	go runPruneLoop(pruneCtx, notificationRepo, log)

	log.Info("site-notifier is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down site-notifier gracefully...")
	pruneCancel()

	for _, c := range consumers {
		c.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown error", zap.Error(err))
	}

	log.Info("site-notifier shutdown complete")
}

// runPruneLoop deletes notification rows past the retention window once a
// day. The table is a derived cache, so aggressive pruning is safe.
func runPruneLoop(ctx context.Context, repo *repository.NotificationRepository, log *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := repo.DeleteOlderThan(ctx, retentionDays)
			if err != nil {
				log.Error("Notification prune failed", zap.Error(err))
				continue
			}
			log.Info("Pruned old notifications", zap.Int64("deleted", pruned))
		}
	}
}
