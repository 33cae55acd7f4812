package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction-pool/config"
	"prediction-pool/handlers"
	"prediction-pool/models"
	"prediction-pool/services"
	"prediction-pool/utils"
	"prediction-pool/workers"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	log := utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Prediction{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// --- Leaderboard cache (optional) ---
	var cache services.LeaderboardCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnf("⚠️  Redis unreachable (%v), leaderboard will be served uncached until it recovers", err)
		}
		cache = services.NewRedisLeaderboardCache(client, cfg.LeaderboardCacheTTL)
	} else {
		log.Info("⚠️  REDIS_URL not set, leaderboard cache disabled")
	}
	leaderboardService := services.NewLeaderboardService(db, cache)

	// --- Result hooks: invalidate first so snapshots read fresh standings ---
	hooks := []services.ResultHook{leaderboardService}
	if cfg.R2Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.CloudflareAccountID, cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret, cfg.R2BucketName, cfg.CDNBaseURL)
		if err != nil {
			log.Fatalf("failed to initialize R2 client: %v", err)
		}
		hooks = append(hooks, services.NewStandingsPublisher(leaderboardService, uploader, clock))
	} else {
		log.Info("⚠️  R2 credentials not set, standings snapshots disabled")
	}

	authService := services.NewAuthService(db, clock, cfg.JWTSecret, cfg.JWTExpiresIn)
	matchService := services.NewMatchService(db, clock, cfg.DefaultCompetition, hooks...)
	predictionService := services.NewPredictionService(db, clock)

	sched, err := matchService.StartKickoffScheduler(ctx, cfg.KickoffSweepInterval)
	if err != nil {
		log.Fatalf("failed to start kickoff scheduler: %v", err)
	}

	repairWorker := workers.NewPointsRepairWorker(matchService, cfg.RepairInterval)
	repairWorker.OnRepaired = leaderboardService.Invalidate
	go repairWorker.Start(ctx)

	app := handlers.NewApp(handlers.AppConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminAPIKey:    cfg.AdminAPIKey,
	}, handlers.Services{
		Auth:        authService,
		Matches:     matchService,
		Predictions: predictionService,
		Leaderboard: leaderboardService,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("Server error: %v", err)
			stop()
		}
	}()

	log.Infof("✅ Server running on http://localhost:%s", cfg.Port)
	log.Infof("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Errorf("scheduler shutdown: %v", err)
	}
}
