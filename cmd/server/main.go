package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/collaborators"
	"github.com/dmitrymomot/newsletter/internal/db"
	"github.com/dmitrymomot/newsletter/internal/idempotency"
	"github.com/dmitrymomot/newsletter/internal/newsletters"
	"github.com/dmitrymomot/newsletter/internal/subscriptions"
	"github.com/dmitrymomot/newsletter/internal/templates"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/archive"
	"github.com/dmitrymomot/newsletter/pkg/config"
	"github.com/dmitrymomot/newsletter/pkg/cookie"
	"github.com/dmitrymomot/newsletter/pkg/email"
	"github.com/dmitrymomot/newsletter/pkg/flash"
	"github.com/dmitrymomot/newsletter/pkg/httpserver"
	"github.com/dmitrymomot/newsletter/pkg/logger"
	"github.com/dmitrymomot/newsletter/pkg/pg"
	"github.com/dmitrymomot/newsletter/pkg/redis"
	"github.com/dmitrymomot/newsletter/pkg/requestid"
	"github.com/dmitrymomot/newsletter/pkg/session"
)

type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	Name           string `env:"APP_NAME" envDefault:"newsletter"`
	BaseURL        string `env:"APP_BASE_URL" envDefault:"http://localhost:8000"`
	LogLevel       string `env:"APP_LOG_LEVEL"`
	MigrateOnStart bool   `env:"APP_MIGRATE_ON_START" envDefault:"true"`
}

func main() {
	var app appConfig
	config.MustLoad(&app)

	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, log); err != nil {
		log.ErrorContext(ctx, "server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	log.InfoContext(ctx, "server stopped")
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		pgCfg      pg.Config
		redisCfg   redis.Config
		cookieCfg  cookie.Config
		sessionCfg session.Config
		emailCfg   email.Config
		archiveCfg archive.Config
		httpCfg    httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&cookieCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&archiveCfg) },
		func() error { return config.Load(&httpCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if app.MigrateOnStart {
		if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, pgCfg, log); err != nil {
			return err
		}
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close redis client", "error", err)
		}
	}()

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}
	sessions := session.New(session.NewRedisStore(rdb, sessionCfg.KeyPrefix), cookies, sessionCfg)
	messages := flash.New(cookies, log)

	mailer, err := newMailer(emailCfg)
	if err != nil {
		return err
	}
	if emailCfg.DevDir != "" {
		log.InfoContext(ctx, "writing emails to disk", "dir", emailCfg.DevDir)
	}

	issues, err := archive.New(ctx, archiveCfg)
	if err != nil {
		return err
	}

	hasher, err := accounts.NewHasher(accounts.DefaultParams)
	if err != nil {
		return err
	}

	pages := views.MustNew()
	mails := templates.MustNew()

	accountsSvc := accounts.NewService(
		accounts.NewStorage(pool), hasher, sessions, messages, pages,
		accounts.WithLogger(log),
	)
	subscriptionsSvc := subscriptions.NewService(
		subscriptions.NewStorage(pool), mailer, mails, app.BaseURL,
		subscriptions.WithLogger(log),
	)
	collaboratorsSvc := collaborators.NewService(collaborators.Deps{
		Store:    collaborators.NewStorage(pool),
		Mailer:   mailer,
		Renderer: mails,
		Hasher:   hasher,
		Flash:    messages,
		Views:    pages,
		BaseURL:  app.BaseURL,
	}, collaborators.WithLogger(log))
	newslettersSvc := newsletters.NewService(
		idempotency.NewStore(pool), mailer, messages, pages,
		newsletters.WithLogger(log),
		newsletters.WithArchive(issues),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, middleware.Recoverer, sessions.Middleware)

	r.Get("/", handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Templ(pages.Home())
	}))
	r.Get("/health_check", httpserver.LivenessHandler())
	r.Get("/ready", readiness(log, pool, rdb))

	r.Mount("/login", accountsSvc.LoginHandler())
	r.Mount("/subscriptions", subscriptionsSvc.Handle())
	collaboratorsSvc.PublicRoutes(r)

	r.Route("/admin", func(r chi.Router) {
		r.Use(sessions.RequireAuth(accounts.RedirectToLogin()))
		accountsSvc.AdminRoutes(r)
		newslettersSvc.AdminRoutes(r)
		collaboratorsSvc.AdminRoutes(r)
	})

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func newMailer(cfg email.Config) (email.EmailSender, error) {
	if cfg.DevDir != "" {
		return email.NewDevSender(cfg.DevDir), nil
	}
	return email.NewPostmarkClient(cfg)
}

func readiness(log *slog.Logger, pool *pgxpool.Pool, rdb *goredis.Client) http.HandlerFunc {
	return httpserver.ReadinessHandler(log, pg.Healthcheck(pool), redis.Healthcheck(rdb))
}
