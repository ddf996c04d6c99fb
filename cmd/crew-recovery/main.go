package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/avialine/crew-recovery/httpapp"
	"github.com/avialine/crew-recovery/internal/application/service"
	"github.com/avialine/crew-recovery/internal/config"
	"github.com/avialine/crew-recovery/internal/domain/models"
	"github.com/avialine/crew-recovery/internal/domain/ports"
	"github.com/avialine/crew-recovery/internal/infrastructures/estimate"
	"github.com/avialine/crew-recovery/internal/infrastructures/roster"
	"github.com/avialine/crew-recovery/internal/infrastructures/roster/memory"
	"github.com/avialine/crew-recovery/internal/infrastructures/roster/postgres"
	rosterredis "github.com/avialine/crew-recovery/internal/infrastructures/roster/redis"
	"github.com/avialine/crew-recovery/internal/infrastructures/tracing"
	"github.com/avialine/crew-recovery/internal/observability"
	transporthttp "github.com/avialine/crew-recovery/internal/transport/http"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := tracing.InitTracer("crew-recovery", cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	log.Info("crew-recovery starting", zap.String("http_addr", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)))

	limits, err := cfg.Limits.RuleLimits()
	if err != nil {
		log.Fatal("invalid rule limits", zap.Error(err))
	}

	var (
		store     ports.DutyStore
		directory ports.CrewDirectory
	)
	mem := memory.NewStore()
	store, directory = mem, mem

	if cfg.DB.Enabled() {
		pg, err := postgres.New(context.Background(), cfg.DB.DatabaseURL())
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		store, directory = pg, pg
		log.Info("roster backend: postgres")
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}()
		cache := rosterredis.NewDutyCacheRepository(redisClient)
		store = roster.NewCachedStore(log, store, cache, cfg.Redis.DutyTTL)
		log.Info("duty cache: redis", zap.Duration("ttl", cfg.Redis.DutyTTL))
	}

	costEstimator, err := estimate.NewStandardCostEstimator(estimate.CostConfig{
		HourlyRates:        cfg.Pay.HourlyRates,
		DefaultHourlyRate:  cfg.Pay.DefaultHourlyRate,
		PerDiemDaily:       cfg.Pay.PerDiemDaily,
		DeadheadFlat:       cfg.Pay.DeadheadFlat,
		DeadheadPerMinute:  cfg.Pay.DeadheadPerMinute,
		HotelNight:         cfg.Pay.HotelNight,
		OvertimeCycleHours: cfg.Pay.OvertimeCycleHours,
		OvertimeMultiplier: cfg.Pay.OvertimeMultiplier,
	})
	if err != nil {
		log.Fatal("invalid pay configuration", zap.Error(err))
	}
	logisticsEstimator := estimate.NewMatrixLogisticsEstimator(
		cfg.Logistics.TravelMinutes,
		cfg.Logistics.DefaultTravelMinutes,
		cfg.Logistics.CalloutLead,
	)

	thresholds, err := scoringThresholds(cfg.Scoring)
	if err != nil {
		log.Fatal("invalid scoring configuration", zap.Error(err))
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	legalityService := service.NewLegalityService(log, limits)
	rankingService := service.NewRankingService(log, thresholds)
	recoveryService := service.NewRecoveryService(
		log,
		store,
		directory,
		legalityService,
		rankingService,
		costEstimator,
		logisticsEstimator,
		service.SearchParams{
			Budget:          cfg.Search.Budget,
			Parallelism:     cfg.Search.Parallelism,
			ReportLead:      cfg.Search.ReportLead,
			AssumedBlock:    cfg.Search.AssumedBlock,
			ReleaseBuffer:   cfg.Search.ReleaseBuffer,
			ReserveWindow:   cfg.Search.ReserveWindow,
			DefaultStrategy: models.RankingStrategy(cfg.Search.DefaultStrategy),
		},
		collector,
	)

	mux := transporthttp.NewRouter(log, recoveryService, store, directory, collector)
	app := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, httpapp.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
	}, mux)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		app.Stop(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}
}

func scoringThresholds(cfg config.ScoringConfig) (service.ScoringThresholds, error) {
	highCost, err := decimal.NewFromString(cfg.HighCostThreshold)
	if err != nil {
		return service.ScoringThresholds{}, fmt.Errorf("parse high_cost_threshold %q: %w", cfg.HighCostThreshold, err)
	}
	highRate, err := decimal.NewFromString(cfg.HighHourlyRate)
	if err != nil {
		return service.ScoringThresholds{}, fmt.Errorf("parse high_hourly_rate %q: %w", cfg.HighHourlyRate, err)
	}

	return service.ScoringThresholds{
		HighCost:       highCost,
		HighHourlyRate: highRate,
		FreshDutyHours: cfg.FreshDutyHours,
	}, nil
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
