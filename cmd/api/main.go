package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/config"
	"persona-engine/internal/db"
	apihttp "persona-engine/internal/http"
	"persona-engine/internal/service"
	"persona-engine/internal/store"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal("catalog load", zap.Error(err))
	}

	kv := buildStore(ctx, cfg, logger)
	history := store.NewHistoryStore(kv, logger)

	engine := service.NewEngine(cat, logger)
	models := service.NewModelCalculator(cat, logger)
	migrator := service.NewMigrator(models, logger)
	recoverer := service.NewRecoverer(engine, history, logger)

	// Repair previously persisted profiles before serving anything.
	if _, stats, err := recoverer.RunStartupRecovery(ctx); err != nil {
		logger.Warn("startup recovery skipped", zap.Error(err))
	} else if stats.Recalculated+stats.Patched > 0 {
		logger.Info("startup recovery repaired records",
			zap.Int("recalculated", stats.Recalculated), zap.Int("patched", stats.Patched))
	}

	assessmentH := apihttp.NewAssessmentHandler(logger, engine, migrator, recoverer, history, cat)
	sessionH := apihttp.NewSessionHandler(logger, history)
	router := apihttp.NewRouter(logger, assessmentH, sessionH)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreBackend))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// buildStore selects the persistence backend, degrading to the in-memory
// store when the configured one cannot be reached.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) store.Store {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, falling back to memory store", zap.Error(err))
			return store.NewMemoryStore()
		}
		return store.NewRedisStore(client)

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Warn("db connect failed, falling back to memory store", zap.Error(err))
			return store.NewMemoryStore()
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			logger.Warn("db schema init failed, falling back to memory store", zap.Error(err))
			pool.Close()
			return store.NewMemoryStore()
		}
		return store.NewPostgresStore(pool)

	default:
		return store.NewMemoryStore()
	}
}
