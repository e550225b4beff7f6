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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/dayscore-api/api/swagger"
	"github.com/noah-isme/dayscore-api/internal/handler"
	"github.com/noah-isme/dayscore-api/internal/middleware"
	"github.com/noah-isme/dayscore-api/internal/repository"
	"github.com/noah-isme/dayscore-api/internal/scoring"
	"github.com/noah-isme/dayscore-api/internal/service"
	"github.com/noah-isme/dayscore-api/pkg/cache"
	"github.com/noah-isme/dayscore-api/pkg/config"
	"github.com/noah-isme/dayscore-api/pkg/database"
	"github.com/noah-isme/dayscore-api/pkg/jobs"
	"github.com/noah-isme/dayscore-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dayscore-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dayscore-api/pkg/middleware/requestid"
)

// @title DayScore API
// @version 0.1.0
// @description Daily journal scoring: deterministic goal scores, bounded LLM enhancement, streaks and trends
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	runRepo := repository.NewAnalysisRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	goalService := service.NewGoalService(goalRepo, validate, logr)
	journalService := service.NewJournalService(journalRepo, validate, logr)

	enhancer := scoring.NewEnhancer(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logr)
	scoringService := service.NewScoringService(journalRepo, goalRepo, scoreRepo, cacheRepo, enhancer, logr, cfg.Scoring.SameThreshold)
	scoringService.AttachMetrics(metricsService)
	trendService := service.NewTrendService(scoreRepo, cacheRepo, logr, service.TrendOptions{
		CacheEnabled: cfg.Trends.CacheEnabled,
		CacheTTL:     cfg.Trends.CacheTTL,
		DefaultDays:  cfg.Trends.DefaultDays,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analysisService := service.NewAnalysisService(userRepo, runRepo, scoringService, logr)
	analysisService.AttachMetrics(metricsService)
	queue := jobs.NewQueue("daily-analysis", analysisService.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Analysis.WorkerConcurrency,
		MaxRetries: cfg.Analysis.WorkerRetries,
		Logger:     logr,
	})
	analysisService.AttachQueue(queue)
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Analysis.Enabled {
		go analysisService.Run(ctx, cfg.Analysis.TickInterval)
	}

	authHandler := handler.NewAuthHandler(authService)
	goalHandler := handler.NewGoalHandler(goalService)
	journalHandler := handler.NewJournalHandler(journalService)
	scoreHandler := handler.NewScoreHandler(scoringService)
	trendHandler := handler.NewTrendHandler(trendService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	auth.PATCH("/me", middleware.JWT(authService), authHandler.UpdateMe)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/goals", goalHandler.List)
	protected.POST("/goals", goalHandler.Create)
	protected.PATCH("/goals/:id", goalHandler.Update)
	protected.DELETE("/goals/:id", goalHandler.Deactivate)

	protected.GET("/journals", journalHandler.List)
	protected.PUT("/journals", journalHandler.Submit)
	protected.POST("/journals/append", journalHandler.Append)
	protected.GET("/journals/:date", journalHandler.GetByDate)

	protected.POST("/scores/:date", scoreHandler.ScoreDay)
	protected.GET("/scores/streaks", scoreHandler.GetStreaks)
	protected.GET("/scores/:date", scoreHandler.GetScore)

	protected.GET("/trends", trendHandler.AllGoalsTrends)
	protected.GET("/trends/export/csv", trendHandler.ExportCSV)
	protected.GET("/trends/export/pdf", trendHandler.ExportPDF)
	protected.GET("/trends/:category", trendHandler.GoalTrend)
	protected.GET("/trends/:category/weekly", trendHandler.WeekOverWeek)

	protected.POST("/analysis/run", analysisHandler.TriggerNow)
	protected.GET("/analysis/:date", analysisHandler.GetRun)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
