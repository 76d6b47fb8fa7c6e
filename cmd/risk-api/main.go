package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-risk-api/api/swagger"
	"github.com/noah-isme/student-risk-api/internal/handler"
	internalmiddleware "github.com/noah-isme/student-risk-api/internal/middleware"
	"github.com/noah-isme/student-risk-api/internal/service"
	"github.com/noah-isme/student-risk-api/pkg/config"
	"github.com/noah-isme/student-risk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-risk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-risk-api/pkg/middleware/requestid"
)

const version = "1.0.0"

// @title Student Risk API
// @version 1.0.0
// @description Anxiety risk screening for individual students and class rosters
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

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		return
	}
	logr.Sugar().Infow("server stopped")
}

func newRouter(cfg *config.Config, logr *zap.Logger) *gin.Engine {
	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := service.NewValidator()
	assessmentSvc := service.NewAssessmentService(validate, metricsSvc, logr, service.AssessmentServiceConfig{
		SimulatedLatency: cfg.Assessment.SimulatedLatency,
	})
	rosterSvc := service.NewRosterService(assessmentSvc, metricsSvc, logr, service.RosterServiceConfig{
		MaxRows: cfg.Roster.MaxRows,
		TopN:    cfg.Roster.TopN,
	})
	reportSvc := service.NewReportService(service.ReportConfig{Title: cfg.Report.Title}, metricsSvc, logr, nil, nil)

	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc, reportSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc, reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, version)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/assessments", assessmentHandler.Create)
	api.POST("/assessments/report", assessmentHandler.Report)
	api.POST("/rosters/assessments", internalmiddleware.BodyLimit(cfg.Roster.MaxUploadBytes), rosterHandler.Assess)

	return r
}
