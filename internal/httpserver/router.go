package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/handler"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

type Handlers struct {
	Projects    *handler.ProjectHandler
	Units       *handler.UnitHandler
	Categories  *handler.CategoryHandler
	Assignments *handler.TeamAssignmentHandler
	Teams       *handler.TeamHandler
	Templates   *handler.TemplateHandler
	Schedule    *handler.ScheduleHandler
}

func NewRouter(h Handlers, logger *zap.Logger, db *pgxpool.Pool, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			latency,
		)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Reads are open; mutations require a bearer token.
	r.GET("/projects", h.Projects.List)
	r.GET("/projects/:id", h.Projects.Get)
	r.GET("/projects/:id/units", h.Units.ListByProject)
	r.GET("/units/:id", h.Units.Get)
	r.GET("/units/:id/categories", h.Categories.ListByUnit)
	r.GET("/categories/:id", h.Categories.Get)
	r.GET("/categories/:id/team-assignments", h.Assignments.ListByCategory)
	r.GET("/team-assignments/:id", h.Assignments.Get)
	r.GET("/companies/:id/teams", h.Teams.ListByCompany)
	r.GET("/teams/:id", h.Teams.Get)
	r.GET("/templates", h.Templates.List)
	r.GET("/templates/:id", h.Templates.Get)
	r.GET("/schedule/delayed", h.Schedule.Delayed)
	r.GET("/schedule/imminent", h.Schedule.Imminent)
	r.GET("/notifications", h.Schedule.Notifications)

	auth := r.Group("/", RequireAuth(jwtSecret))
	{
		auth.POST("/projects", h.Projects.Create)
		auth.PUT("/projects/:id", h.Projects.Update)
		auth.PUT("/projects/:id/progress", h.Projects.SetProgress)
		auth.DELETE("/projects/:id", h.Projects.Delete)

		auth.POST("/units", h.Units.Create)
		auth.PUT("/units/:id", h.Units.Update)
		auth.PUT("/units/:id/progress", h.Units.SetProgress)
		auth.DELETE("/units/:id", h.Units.Delete)
		auth.POST("/units/:id/apply-template", h.Units.ApplyTemplate)
		auth.POST("/units/:id/clone", h.Units.Clone)

		auth.POST("/categories", h.Categories.Create)
		auth.PUT("/categories/:id", h.Categories.Update)
		auth.DELETE("/categories/:id", h.Categories.Delete)

		auth.POST("/team-assignments", h.Assignments.Create)
		auth.POST("/team-assignments/:id/advance", h.Assignments.Advance)
		auth.PUT("/team-assignments/:id/status", h.Assignments.SetStatus)
		auth.PUT("/team-assignments/:id/flags", h.Assignments.UpdateFlags)
		auth.DELETE("/team-assignments/:id", h.Assignments.Delete)

		auth.POST("/teams", h.Teams.Create)
		auth.PUT("/teams/:id", h.Teams.Update)
		auth.DELETE("/teams/:id", h.Teams.Delete)

		auth.POST("/templates", h.Templates.Create)
		auth.DELETE("/templates/:id", h.Templates.Delete)
	}

	return r
}

// Pinger is the slice of the db pool the readiness check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthRouter is the minimal router the daemons expose: health, readiness
// and metrics only. Readiness requires the db to answer a ping and, when
// mqConnected is non-nil, the AMQP connection to be up.
func NewHealthRouter(logger *zap.Logger, db Pinger, mqConnected func() bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(500, gin.H{"status": "db_not_ready"})
			return
		}
		if mqConnected != nil && !mqConnected() {
			logger.Warn("Readiness check failed: MQ disconnected")
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
