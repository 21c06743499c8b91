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
	"github.com/benbakka/imtilak2-sub000/internal/handler"
	"github.com/benbakka/imtilak2-sub000/internal/httpserver"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/assignment"
	"github.com/benbakka/imtilak2-sub000/internal/service/clone"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/internal/service/template"
	"github.com/benbakka/imtilak2-sub000/pkg/db"
	"github.com/benbakka/imtilak2-sub000/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting site-server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("port", cfg.Server.Port),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Repositories
	projectRepo := repository.NewProjectRepository(dbConn, log)
	unitRepo := repository.NewUnitRepository(dbConn, log)
	categoryRepo := repository.NewCategoryRepository(dbConn, log)
	assignmentRepo := repository.NewTeamAssignmentRepository(dbConn, log)
	teamRepo := repository.NewTeamRepository(dbConn, log)
	templateRepo := repository.NewTemplateRepository(dbConn, log)
	scheduleRepo := repository.NewScheduleRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	// Services
	clock := schedule.NewRealClock()
	aggregator := progress.NewAggregator(assignmentRepo, categoryRepo, unitRepo, projectRepo, log)
	assignmentSvc := assignment.NewService(assignmentRepo, aggregator, log)
	applicator := template.NewApplicator(templateRepo, teamRepo, categoryRepo, assignmentRepo, unitRepo, aggregator, clock, log)
	cloner := clone.NewCloner(categoryRepo, assignmentRepo, unitRepo, aggregator, log)
	scanner := schedule.NewScanner(scheduleRepo, clock, log)

	// Handlers
	handlers := httpserver.Handlers{
		Projects:    handler.NewProjectHandler(projectRepo, aggregator, log),
		Units:       handler.NewUnitHandler(unitRepo, aggregator, applicator, cloner, log),
		Categories:  handler.NewCategoryHandler(categoryRepo, aggregator, log),
		Assignments: handler.NewTeamAssignmentHandler(assignmentRepo, assignmentSvc, log),
		Teams:       handler.NewTeamHandler(teamRepo, log),
		Templates:   handler.NewTemplateHandler(templateRepo, log),
		Schedule:    handler.NewScheduleHandler(scanner, notificationRepo, log),
	}

	router := httpserver.NewRouter(handlers, log, dbConn, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("site-server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down site-server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	dbConn.Close()
	log.Info("site-server shutdown complete")
}
