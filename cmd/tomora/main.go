package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tomora/internal/config"
	httpx "github.com/dropDatabas3/tomora/internal/http"
	alexactrl "github.com/dropDatabas3/tomora/internal/http/controllers/alexa"
	healthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/oauth"
	"github.com/dropDatabas3/tomora/internal/http/router"
	alexasvc "github.com/dropDatabas3/tomora/internal/http/services/alexa"
	oauthsvc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/tomora/internal/jwt"
	"github.com/dropDatabas3/tomora/internal/oauth/clients"
	"github.com/dropDatabas3/tomora/internal/oauth/grants"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/rate"
	"github.com/dropDatabas3/tomora/internal/store/core"
	"github.com/dropDatabas3/tomora/internal/store/memory"
	"github.com/dropDatabas3/tomora/internal/store/pg"
)

func main() {
	configPath := flag.String("config", "", "ruta al config.yaml (opcional; defaults + env si falta)")
	flag.Parse()

	// .env es best-effort: en producción las vars vienen del entorno real.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// El logger todavía no existe: stderr y afuera.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Data store ----
	var repo core.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("postgres init failed", logger.Err(err))
		}
		if cfg.Flags.Migrate {
			if err := pgStore.Migrate(ctx); err != nil {
				log.Fatal("migrations failed", logger.Err(err))
			}
			log.Info("migrations applied")
		}
		repo = pgStore
	default:
		log.Warn("using in-memory store, data will not survive restarts")
		repo = memory.New()
	}
	defer repo.Close()

	// ---- Ledgers de grants ----
	codes, err := grants.New(grants.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix + ":code",
	})
	if err != nil {
		log.Fatal("code ledger init failed", logger.Err(err))
	}
	refresh, err := grants.New(grants.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix + ":rt",
	})
	if err != nil {
		log.Fatal("refresh ledger init failed", logger.Err(err))
	}

	// ---- Rate limiting del login ----
	var loginLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			loginLimiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+":rl:login",
				cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		} else {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		}
	}

	// ---- Core OAuth ----
	issuer := jwtx.NewIssuer(cfg.Server.BaseURL, cfg.OAuth.SigningSecret, cfg.AccessTTL())
	registry := clients.NewStatic(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret)

	authorizeService := oauthsvc.NewAuthorizeService(registry)
	loginService := oauthsvc.NewLoginService(oauthsvc.LoginDeps{
		Repo:    repo,
		Clients: registry,
		Codes:   codes,
		CodeTTL: cfg.CodeTTL(),
	})
	tokenService := oauthsvc.NewTokenService(oauthsvc.TokenDeps{
		Clients:    registry,
		Issuer:     issuer,
		Codes:      codes,
		Refresh:    refresh,
		RefreshTTL: cfg.RefreshTTL(),
	})
	remindersService := alexasvc.NewRemindersService(repo)

	// ---- Métricas ----
	metricsHandler, err := httpx.RegisterMetrics(nil)
	if err != nil {
		log.Fatal("metrics init failed", logger.Err(err))
	}

	handler := router.New(router.Deps{
		Authorize:          oauthctrl.NewAuthorizeController(authorizeService),
		Login:              oauthctrl.NewLoginController(loginService),
		Token:              oauthctrl.NewTokenController(tokenService),
		Info:               oauthctrl.NewInfoController(cfg.Server.BaseURL, cfg.OAuth.ClientID),
		Reminders:          alexactrl.NewRemindersController(remindersService),
		Health:             healthctrl.NewController(repo),
		Issuer:             issuer,
		Repo:               repo,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		LoginLimiter:       loginLimiter,
		MetricsHandler:     metricsHandler,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", logger.Err(err))
	}
	log.Info("bye")
}
