package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/config"
	"github.com/wanderlust-app/wanderlust/internal/handler"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/internal/repository"
	"github.com/wanderlust-app/wanderlust/pkg/cache"
	"github.com/wanderlust-app/wanderlust/pkg/cookie"
	"github.com/wanderlust-app/wanderlust/pkg/db"
	"github.com/wanderlust-app/wanderlust/pkg/logger"
	"github.com/wanderlust-app/wanderlust/pkg/mailer"
	"github.com/wanderlust-app/wanderlust/pkg/redis"
	"github.com/wanderlust-app/wanderlust/pkg/session"
	"github.com/wanderlust-app/wanderlust/pkg/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//go:embed static
var staticFS embed.FS

func main() {
	ctx := context.Background()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.New(slog.LevelInfo).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var log *slog.Logger
	if cfg.Sentry.DSN != "" {
		log = logger.NewWithSentry(cfg.Sentry, middleware.RequestIDExtractor())
	} else {
		log = logger.New(cfg.LogLevel(), middleware.RequestIDExtractor())
	}

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx, pool, migrationsFS, cfg.Database.MigrationsTable, log); err != nil {
		log.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	runOpts := []app.RunOption{
		app.Logger(log),
		app.ShutdownHook(db.Shutdown(pool)),
	}
	healthOpts := []app.HealthOption{
		app.WithReadinessCheck("postgres", db.Healthcheck(pool)),
	}

	// Listing reads go through redis when configured, an in-process
	// LRU otherwise.
	var listingCache cache.Cache[repository.Listing]
	if cfg.Redis.URL != "" {
		var redisOpts []redis.Option
		if cfg.Redis.PoolSize > 0 {
			redisOpts = append(redisOpts, redis.WithPoolSize(cfg.Redis.PoolSize))
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisOpts = append(redisOpts, redis.WithMinIdleConns(cfg.Redis.MinIdleConns))
		}
		rdb, err := redis.Open(ctx, cfg.Redis.URL, redisOpts...)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		listingCache = cache.NewRedis[repository.Listing](rdb,
			cache.WithPrefix[repository.Listing]("wanderlust"))
		healthOpts = append(healthOpts, app.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
		runOpts = append(runOpts, app.ShutdownHook(redis.Shutdown(rdb)))
	} else {
		listingCache = cache.NewMemory[repository.Listing]()
	}

	users := repository.NewUsers(pool)
	listings := repository.NewListings(pool, listingCache)
	reviews := repository.NewReviews(pool)
	sessions := repository.NewSessions(pool)

	var mail mailer.Sender
	if cfg.Mailer.APIKey != "" {
		mail = mailer.NewResend(cfg.Mailer)
	}

	appOpts := []app.Option{
		app.WithLogger(log),
		app.WithCookieManager(cookie.New(
			cookie.WithSecret(cfg.Cookie.Secret),
			cookie.WithSecure(cfg.Cookie.Secure),
		)),
		app.WithSessionManager(session.NewManager(sessions,
			session.WithMaxAge(cfg.Session.MaxAge),
			session.WithSecure(cfg.Cookie.Secure),
		)),
		app.WithStaticFiles("/static", staticFS, "static"),
		app.WithMiddleware(
			middleware.RequestID(),
			middleware.Recover(),
			middleware.MethodOverride(),
			middleware.CurrentUser(users),
		),
		app.WithHandlers(
			handler.NewAuth(users, sessions, mail),
			handler.NewListings(listings, reviews),
			handler.NewReviews(reviews, listings),
		),
		app.WithErrorHandler(handler.ErrorHandler()),
		app.WithNotFoundHandler(handler.NotFound()),
		app.WithHealthChecks(healthOpts...),
	}

	if cfg.Storage.Bucket != "" {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			log.Error("failed to configure object storage", "error", err)
			os.Exit(1)
		}
		appOpts = append(appOpts, app.WithStorage(store))
	}

	runOpts = append(runOpts, sessionCleanup(cfg.Session.CleanupSchedule, sessions, log)...)

	if err := app.New(appOpts...).Run(cfg.HTTP.Address, runOpts...); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// sessionCleanup schedules the periodic purge of expired sessions and
// ties the scheduler to the server lifecycle.
func sessionCleanup(schedule string, sessions *repository.Sessions, log *slog.Logger) []app.RunOption {
	c := cron.New()

	return []app.RunOption{
		app.StartupHook(func(context.Context) error {
			if _, err := c.AddFunc(schedule, func() {
				n, err := sessions.DeleteExpired(context.Background())
				if err != nil {
					log.Error("session cleanup failed", "error", err)
					return
				}
				if n > 0 {
					log.Info("purged expired sessions", "count", n)
				}
			}); err != nil {
				return err
			}
			c.Start()
			return nil
		}),
		app.ShutdownHook(func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	}
}
