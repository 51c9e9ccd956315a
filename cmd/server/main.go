// Command server runs the StudyLoop progression engine API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/studyloop/studyloop/config"
	"github.com/studyloop/studyloop/internal/application/command"
	"github.com/studyloop/studyloop/internal/application/query"
	"github.com/studyloop/studyloop/internal/domain/achievement"
	"github.com/studyloop/studyloop/internal/infrastructure/messaging"
	"github.com/studyloop/studyloop/internal/infrastructure/persistence/postgres"
	"github.com/studyloop/studyloop/internal/infrastructure/persistence/redis"
	httpapi "github.com/studyloop/studyloop/internal/interface/http"
	"github.com/studyloop/studyloop/pkg/logger"
	"github.com/studyloop/studyloop/pkg/retry"
	"github.com/studyloop/studyloop/pkg/timeutil"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal("failed to load config", logger.Err(err))
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting studyloop",
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	var conn *postgres.Connection
	err = retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		var connErr error
		conn, connErr = postgres.Connect(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
		return connErr
	})
	if err != nil {
		log.Fatal("failed to connect to postgres", logger.Err(err))
	}
	defer conn.Close()

	if err := postgres.Migrate(ctx, conn); err != nil {
		log.Fatal("failed to run migrations", logger.Err(err))
	}
	log.Info("database ready")

	// ─────────────────────────────────────────────────────────────────────────
	// Repositories
	// ─────────────────────────────────────────────────────────────────────────
	lessons := postgres.NewLessonRepository(conn)
	progressions := postgres.NewProgressionRepository(conn)
	achievements := postgres.NewAchievementStore(conn)
	users := postgres.NewUserRepository(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		progressCache    *redis.ProgressCache
		leaderboardCache *redis.LeaderboardCache
		cache            *redis.Cache
	)
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Fatal("failed to connect to redis", logger.Err(err))
		}
		defer cache.Close()

		progressCache = redis.NewProgressCache(cache, log)
		leaderboardCache = redis.NewLeaderboardCache(cache, progressions, log)
		log.Info("redis ready", logger.String("addr", cfg.Redis.Host))
	} else {
		log.Warn("redis disabled, caches off")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus and cache maintenance
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewEventBus(log)
	if progressCache != nil || leaderboardCache != nil {
		messaging.RegisterCacheMaintenance(bus, progressCache, leaderboardCache, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Application handlers
	// ─────────────────────────────────────────────────────────────────────────
	calendar := timeutil.NewCalendar(cfg.App.Location)
	engine := achievement.NewEngine(achievement.DefaultCatalog())

	submitAttempt := command.NewSubmitAttemptHandler(
		conn, lessons, progressions, achievements, engine,
		bus, calendar, timeutil.SystemClock, log,
	)
	registerUser := command.NewRegisterUserHandler(users)
	login := command.NewLoginHandler(users)

	// Interface conversions keep nil caches truly optional.
	var progressCacheIface query.ProgressCache
	if progressCache != nil {
		progressCacheIface = progressCache
	}
	var leaderboardSource query.LeaderboardSource = progressions
	if leaderboardCache != nil {
		leaderboardSource = leaderboardCache
	}

	getProgress := query.NewGetProgressHandler(progressions, progressCacheIface, log)
	listAchievements := query.NewListAchievementsHandler(achievements)
	getLeaderboard := query.NewGetLeaderboardHandler(leaderboardSource)

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	healthCheckers := map[string]httpapi.HealthChecker{"postgres": conn}
	if cache != nil {
		healthCheckers["redis"] = cache
	}

	server := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		EnableCORS:     cfg.HTTP.EnableCORS,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, httpapi.Dependencies{
		SubmitAttempt:    submitAttempt,
		RegisterUser:     registerUser,
		Login:            login,
		GetProgress:      getProgress,
		ListAchievements: listAchievements,
		GetLeaderboard:   getLeaderboard,
		HealthCheckers:   healthCheckers,
		Logger:           log,
	})

	errCh := server.StartAsync()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", logger.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", logger.Err(err))
	}
	log.Info("stopped")
}
