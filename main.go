package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lg/diet-funnel-go-api/internal/checkout"
	"lg/diet-funnel-go-api/internal/funnel"
	"lg/diet-funnel-go-api/internal/plans"
)

// newLogger builds a production zap logger; LOG_LEVEL=debug lowers the level.
func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level == "debug" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// newStore opens the funnel store selected by FUNNEL_STORE. The returned
// func releases its connections.
func newStore(ctx context.Context, cfg config) (funnel.Store, func(), error) {
	switch cfg.StoreKind {
	case "postgres":
		pool, err := funnel.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return funnel.NewPostgresStore(pool), pool.Close, nil
	case "redis":
		client, err := funnel.NewRedisClient(ctx, funnel.RedisOptions{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return funnel.NewRedisStore(client, cfg.FunnelTTL), func() { client.Close() }, nil
	default:
		return funnel.NewMemoryStore(cfg.FunnelTTL), func() {}, nil
	}
}

// newCatalog returns the YAML catalog when PLANS_FILE is set, else the default.
func newCatalog(cfg config) (plans.Catalog, error) {
	if cfg.PlansFile == "" {
		return plans.Default(), nil
	}
	return plans.Load(cfg.PlansFile)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	catalog, err := newCatalog(cfg)
	if err != nil {
		return fmt.Errorf("plan catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := newStore(ctx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("funnel store ready", zap.String("kind", cfg.StoreKind))

	h := &Handler{
		carrier:           funnel.NewCarrier(store),
		checkout:          checkout.NewClient(cfg.CheckoutBaseURL, cfg.CheckoutTimeout),
		catalog:           catalog,
		sessions:          newSessionIssuer(cfg.JWTSecret, cfg.SessionTTL),
		metrics:           newMetrics(),
		log:               logger,
		adminUser:         cfg.AdminUser,
		adminPasswordHash: cfg.AdminPasswordHash,
		allowedOrigin:     cfg.AllowedOrigin,
		now:               time.Now,
	}
	if cfg.AdminPasswordHash == "" {
		logger.Info("admin routes disabled: ADMIN_PASSWORD_HASH not set")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := h.newRouter()

	logger.Info("starting server", zap.String("port", cfg.Port))
	return router.Run(":" + cfg.Port)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "diet-funnel-go-api: %v\n", err)
		os.Exit(1)
	}
}
