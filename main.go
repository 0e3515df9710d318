package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"exchangeapi/internal/auth"
	"exchangeapi/internal/config"
	"exchangeapi/internal/db"
	"exchangeapi/internal/exchange"
	"exchangeapi/internal/http/routes"
	"exchangeapi/internal/logger"
	"exchangeapi/internal/metrics"
	"exchangeapi/internal/ratelimit"
)

const serviceName = "exchangeapi"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: serviceName}).Fatal(ctx, "config.load", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	conn, err := db.Connect(cfg.Store)
	if err != nil {
		logg.Fatal(ctx, "db.connect", err)
	}
	defer func() { _ = db.Close(conn) }()

	if err := db.EnsureBootstrapMerchant(conn, cfg.Bootstrap); err != nil {
		logg.Fatal(ctx, "db.bootstrap_merchant", err)
	}
	if cfg.Bootstrap.Enabled() {
		logg.Info(logg.WithMerchantID(ctx, cfg.Bootstrap.MerchantID), "bootstrap merchant ensured")
	}

	guard, closeRedis := newAuthGuard(ctx, cfg, logg)
	defer closeRedis()

	m := metrics.New()
	svc := exchange.NewService(db.NewExchangeStore(conn), exchange.Options{
		BaseURL:   cfg.BaseURL,
		QRCodeURL: cfg.QRCodeURL,
	})

	api := &fasthttp.Server{
		Name: serviceName,
		Handler: routes.NewAPI(routes.Deps{
			Prefix:    cfg.APIPrefix,
			Log:       logg,
			Metrics:   m,
			Validator: auth.NewValidator(db.NewCredentialStore(conn)),
			Guard:     guard,
			Exchanges: svc,
		}),
		NoDefaultServerHeader: true,
	}

	var ops *fasthttp.Server
	if cfg.OpsAddr != "" {
		ops = &fasthttp.Server{
			Name:    serviceName + "-ops",
			Handler: routes.NewOps(pinger(conn), m.Registry()),
		}
	}

	errCh := make(chan error, 2)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", cfg.ListenAddr), "api listening")
		errCh <- api.ListenAndServe(cfg.ListenAddr)
	}()
	if ops != nil {
		go func() {
			logg.Info(logg.WithField(ctx, "addr", cfg.OpsAddr), "ops listening")
			errCh <- ops.ListenAndServe(cfg.OpsAddr)
		}()
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown requested")
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "server stopped", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := api.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Error(ctx, "api shutdown", err)
	}
	if ops != nil {
		if err := ops.ShutdownWithContext(shutdownCtx); err != nil {
			logg.Error(ctx, "ops shutdown", err)
		}
	}
	logg.Info(ctx, "stopped")
}

// newAuthGuard connects the failed-authentication throttle when Redis is
// configured. Without Redis, or if it is unreachable at startup, the API
// runs unthrottled.
func newAuthGuard(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*ratelimit.Guard, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	store, err := ratelimit.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		logg.Warn(ctx, "redis unavailable, auth throttle disabled", err)
		return nil, func() {}
	}
	guard := ratelimit.NewGuard(store, cfg.AuthFailureLimit, cfg.AuthFailureWindow, logg)
	return guard, func() {
		if err := store.Close(); err != nil {
			logg.Warn(ctx, "redis close", err)
		}
	}
}

func pinger(conn *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.Ping(ctx, conn)
	}
}
