package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/analyses"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/chat"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/services/health"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/config"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/server"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/db"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/object"
	localstore "github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/object/local"
	s3store "github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/object/s3"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// App holds shared dependencies of the API server.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Redis           *redis.Client
	Store           object.ObjectStore
	Roles           *roles.Resolver
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	Health          *health.Service
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  rdb,
		Store:  store,
		Health: health.NewService(),
	}

	var fetcher roles.RoleFetcher
	if cfg.RolesRemoteURL != "" {
		fetcher = remote.NewClient(remote.Options{
			BaseURL:      cfg.RolesRemoteURL,
			Timeout:      cfg.APITimeout,
			ClientID:     cfg.APIClientID,
			ClientSecret: cfg.APIClientSecret,
			TokenURL:     cfg.APITokenURL,
		})
	}
	app.Roles = BuildResolver(cfg, sqlDB, rdb, fetcher)

	if sqlDB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: sqlDB}
		app.Health.Register("database", sqlDB.PingContext)
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}
	if rdb != nil {
		app.Health.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	app.AnalysesService = &analyses.Service{
		Repo:     app.AnalysesRepo,
		Store:    store,
		Pipeline: &analyses.CatalogPipeline{Roles: app.Roles},
	}
	if err := app.AnalysesService.Recover(ctx); err != nil {
		return nil, fmt.Errorf("recover analysis runs: %w", err)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		RolesHandler:    roles.NewHandler(app.Roles, assetIndex(cfg)),
		AnalysisHandler: analyses.NewHandler(app.AnalysesService, 0),
		ChatHandler:     chat.NewHandler(),
		Health:          app.Health,
	})
	return app, nil
}

// BuildResolver assembles the role tiers. The local tier reads Postgres when
// db is set and ROLES_DIR otherwise. The remote tier exists only when fetcher
// is set and is cached in Redis when rdb is set.
func BuildResolver(cfg config.Config, sqlDB *sql.DB, rdb *redis.Client, fetcher roles.RoleFetcher) *roles.Resolver {
	r := &roles.Resolver{Static: roles.NewStaticSource()}
	switch {
	case sqlDB != nil:
		r.Local = &roles.PGSource{DB: sqlDB}
	case strings.TrimSpace(cfg.RolesDir) != "":
		r.Local = &roles.DirSource{Dir: cfg.RolesDir}
	}
	if fetcher != nil {
		var src roles.Source = &roles.RemoteSource{Fetcher: fetcher}
		if rdb != nil {
			src = &roles.CachedSource{Inner: src, Redis: rdb, TTL: cfg.RoleCacheTTL}
		}
		r.Remote = src
	}
	if idx := assetIndex(cfg); idx != nil {
		r.Assets = idx
	}
	return r
}

// Close releases the database and Redis connections after in-flight runs
// finish.
func (a *App) Close() error {
	if a.AnalysesService != nil {
		a.AnalysesService.Wait()
	}
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func assetIndex(cfg config.Config) *roles.DirAssets {
	if strings.TrimSpace(cfg.AssetsDir) == "" {
		return nil
	}
	return &roles.DirAssets{Dir: cfg.AssetsDir}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.database_disabled", map[string]any{"reason": "DATABASE_URL empty; using in-memory repositories"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"addr": cfg.RedisAddr, "error": err})
			return nil, nil
		}
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
