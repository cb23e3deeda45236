package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm/logger"

	"github.com/AlexTsikhun/social-media-api/internal/config"
	"github.com/AlexTsikhun/social-media-api/internal/database"
	"github.com/AlexTsikhun/social-media-api/internal/events"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/ratelimit"
	"github.com/AlexTsikhun/social-media-api/internal/router"
	"github.com/AlexTsikhun/social-media-api/internal/telemetry"
)

func fatal(message string, err error) {
	logs.LogJSON("FATAL", message, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}

func main() {
	cfg := config.LoadConfig()
	logs.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tcfg := telemetry.Config{
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.GinMode,
		SampleRatio: cfg.OTELSampleRatio,
	}
	shutdownTracing, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		fatal("Tracing init failed", err)
	}

	if err := database.Connect(cfg.DBUrl, database.Options{LogLevel: logger.Warn, Tracing: tcfg.Enabled()}); err != nil {
		fatal("Database connection failed", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DBUrl); err != nil {
			fatal("Migration failed", err)
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.New(rdb, int64(cfg.RateLimitPerMinute), time.Minute)
	}

	if len(cfg.KafkaBrokers) > 0 {
		events.SetPublisher(events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic))
	}

	r := router.New(router.Deps{JWTSecret: cfg.JWTSecret, Limiter: limiter})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "social-media-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logs.LogJSON("INFO", "Server listening", map[string]interface{}{"extra": "port: " + cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server stopped", err)
		}
	}()

	<-ctx.Done()
	logs.LogJSON("INFO", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.LogJSON("ERROR", "HTTP shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := events.Close(); err != nil {
		logs.LogJSON("ERROR", "Event publisher close failed", map[string]interface{}{"error": err.Error()})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logs.LogJSON("ERROR", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := database.Close(); err != nil {
		logs.LogJSON("ERROR", "Database close failed", map[string]interface{}{"error": err.Error()})
	}
}
