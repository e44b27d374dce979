package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dhakalu/telehealth-web-app-sub001/api/swagger"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/handler"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/middleware"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/repository"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/service"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/cache"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/config"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/database"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/logger"
	corsmiddleware "github.com/dhakalu/telehealth-web-app-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/dhakalu/telehealth-web-app-sub001/pkg/middleware/requestid"
)

// @title Telehealth Portal API
// @version 0.1.0
// @description Appointment calendar and office schedule service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timeline cache disabled", "error", err)
		redisClient = nil
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT)
	timelineSvc := service.NewTimelineService(
		scheduleRepo, exceptionRepo, appointmentRepo,
		redisClient, metricsSvc, logr,
		cfg.Timeline, cfg.WorkingHours,
	)
	scheduleSvc := service.NewScheduleService(scheduleRepo, exceptionRepo, timelineSvc, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, timelineSvc, logr)
	exportSvc := service.NewExportService(timelineSvc, logr)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	timelineHandler := handler.NewTimelineHandler(timelineSvc, exportSvc)
	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("", middleware.JWT(authSvc))

	staff := []string{models.RolePractitioner, models.RoleSupport}

	schedules := authed.Group("/schedules")
	{
		schedules.POST("", middleware.RequireRoles(staff...), scheduleHandler.Create)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.PUT("/:id", middleware.RequireRoles(staff...), scheduleHandler.Update)

		schedules.GET("/:id/timeslots", scheduleHandler.ListTimeslots)
		schedules.POST("/:id/timeslots", middleware.RequireRoles(staff...), scheduleHandler.CreateTimeslot)
		schedules.DELETE("/:id/timeslots/:timeslotId", middleware.RequireRoles(staff...), scheduleHandler.DeleteTimeslot)

		schedules.GET("/:id/exceptions", scheduleHandler.ListExceptions)
		schedules.POST("/:id/exceptions", middleware.RequireRoles(staff...), scheduleHandler.CreateException)
		schedules.DELETE("/:id/exceptions/:exceptionId", middleware.RequireRoles(staff...), scheduleHandler.DeleteException)

		schedules.GET("/:id/timeline/day", timelineHandler.Day)
		schedules.GET("/:id/timeline/week", timelineHandler.Week)
		schedules.GET("/:id/timeline/week/export", timelineHandler.ExportWeek)
	}

	authed.GET("/practitioners/:practitionerId/schedule", scheduleHandler.GetByPractitioner)
	authed.GET("/practitioners/:practitionerId/appointments", appointmentHandler.ListForPractitioner)

	appointments := authed.Group("/appointments")
	{
		appointments.GET("", appointmentHandler.List)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.POST("", appointmentHandler.Create)
		appointments.DELETE("/:id", appointmentHandler.Cancel)
	}

	// The timeline itself never ticks; a periodic job re-warms today's cached
	// layouts so now-line and scroll positions stay current.
	if redisClient != nil && cfg.Timeline.CacheEnabled {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Timeline.RefreshSpec, func() {
			timelineSvc.RefreshToday(context.Background())
		}); err != nil {
			logr.Sugar().Warnw("timeline refresh schedule invalid", "spec", cfg.Timeline.RefreshSpec, "error", err)
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
