package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"docchooser/internal/chooser"
	"docchooser/internal/documents"
	"docchooser/internal/permissions"
	"docchooser/internal/search"
	"docchooser/internal/services/health"
	"docchooser/internal/shared/config"
	"docchooser/internal/shared/metrics"
	"docchooser/internal/shared/server"
	"docchooser/internal/shared/server/middleware"
	"docchooser/internal/shared/storage/db"
	"docchooser/internal/shared/storage/object"
	localstore "docchooser/internal/shared/storage/object/local"
	s3store "docchooser/internal/shared/storage/object/s3"
	"docchooser/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            *redis.Client
	Store            object.Store
	Index            search.Indexer
	Policy           *permissions.Policy
	Metrics          *metrics.Metrics
	Health           *health.Service
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	ChooserHandler   *chooser.Handler
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		Health:  health.NewService(),
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err := buildIndex(ctx, app); err != nil {
		return nil, err
	}
	if app.Policy, err = buildPolicy(cfg); err != nil {
		return nil, err
	}
	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Metrics:         app.Metrics,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		ChooserHandler:  app.ChooserHandler,
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db_fallback", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
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

func buildIndex(ctx context.Context, app *App) error {
	if app.Config.SearchBackend != "redis" {
		app.Index = search.NewMemoryIndex()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.Config.RedisAddr,
		Password: app.Config.RedisPassword,
		DB:       app.Config.RedisDB,
	})
	idx := search.NewRedisIndex(client, app.Config.RedisKeyPrefix)
	if err := idx.Ping(ctx); err != nil {
		_ = client.Close()
		if app.Config.IsDevLike() {
			telemetry.Warn("bootstrap.search_fallback", map[string]any{"reason": "redis unreachable", "error": err.Error()})
			app.Index = search.NewMemoryIndex()
			return nil
		}
		return fmt.Errorf("connect redis: %w", err)
	}
	app.Redis = client
	app.Index = idx
	app.Health.Register("redis", idx)
	return nil
}

func buildPolicy(cfg config.Config) (*permissions.Policy, error) {
	if strings.TrimSpace(cfg.PermissionsFile) == "" {
		return permissions.Default(), nil
	}
	policy, err := permissions.LoadFile(cfg.PermissionsFile)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	return policy, nil
}

func buildServices(ctx context.Context, app *App) error {
	var repo documents.Repo
	if app.DB != nil {
		pg := &documents.PGRepo{DB: app.DB}
		app.Health.Register("database", pg)
		repo = pg
	} else {
		repo = documents.NewMemoryRepo()
	}
	app.DocumentsRepo = repo

	app.DocumentsService = &documents.Service{
		Store:   app.Store,
		Repo:    repo,
		Index:   app.Index,
		Metrics: app.Metrics,
	}

	// A process-local index starts empty; rebuild it from persisted rows.
	if _, ok := app.Index.(*search.MemoryIndex); ok && app.DB != nil {
		n, err := app.DocumentsService.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindex documents: %w", err)
		}
		telemetry.Info("bootstrap.reindexed", map[string]any{"documents": n})
	}

	renderer, err := chooser.NewRenderer()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(nil)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.ChooserHandler = &chooser.Handler{
		Docs:     app.DocumentsService,
		Perms:    app.Policy,
		Renderer: renderer,
		Links: documents.Links{
			ServePrefix: app.Config.DocumentsServePrefix,
			AdminPrefix: app.Config.AdminPrefix,
		},
		Rules: chooser.UploadRules{
			MaxBytes:   app.Config.MaxUploadBytes,
			Extensions: app.Config.DocumentExtensions,
		},
		Metrics: app.Metrics,
		UploadGuard: middleware.RateLimit(middleware.RateLimitConfig{
			Scope:   "chooser-upload",
			Rule:    middleware.RateLimitRule{PerMinute: app.Config.UploadRatePerMinute, Burst: app.Config.UploadBurst},
			Limiter: limiter,
		}),
	}
	return nil
}
