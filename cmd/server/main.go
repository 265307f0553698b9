package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticshandler "bistro-boss/backend/internal/analytics/handler"
	analyticsservice "bistro-boss/backend/internal/analytics/service"
	"bistro-boss/backend/internal/audit"
	carthandler "bistro-boss/backend/internal/cart/handler"
	cartservice "bistro-boss/backend/internal/cart/service"
	"bistro-boss/backend/internal/config"
	healthhandler "bistro-boss/backend/internal/health/handler"
	"bistro-boss/backend/internal/logger"
	menuhandler "bistro-boss/backend/internal/menu/handler"
	"bistro-boss/backend/internal/metrics"
	orderhandler "bistro-boss/backend/internal/order/handler"
	orderservice "bistro-boss/backend/internal/order/service"
	paymentdomain "bistro-boss/backend/internal/payment/domain"
	paymenthandler "bistro-boss/backend/internal/payment/handler"
	"bistro-boss/backend/internal/payment/stripe"
	"bistro-boss/backend/internal/policy/engine"
	reviewhandler "bistro-boss/backend/internal/review/handler"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/server"
	"bistro-boss/backend/internal/telemetry"
	telemetryotel "bistro-boss/backend/internal/telemetry/otel"
	userhandler "bistro-boss/backend/internal/user/handler"
	userservice "bistro-boss/backend/internal/user/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	st, err := openStores(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if st.conn == nil {
		lg.Warn("using_in_memory_store", zap.String("reason", "DATABASE_URL is empty"))
	}

	authz, err := engine.NewOPAEvaluator(ctx, engine.DefaultAdminPolicy)
	if err != nil {
		return err
	}
	tokens, err := newTokenProvider(cfg)
	if err != nil {
		return err
	}

	var (
		gateway  paymentdomain.Gateway
		intents  orderservice.IntentRetriever
		registry = metrics.New()
	)
	if cfg.PaymentsEnabled() {
		client := stripe.NewClient(cfg.StripeSecretKey, cfg.StripeAPIBase, nil, lg)
		gateway, intents = client, client
	} else {
		lg.Warn("payment_gateway_disabled", zap.String("reason", "STRIPE_SECRET_KEY is empty"))
	}

	events := telemetryotel.NewEventEmitter(providers.LoggerProvider)
	auditLogger := audit.NewLogger(st.audit, audit.ClientIP)
	users := userservice.NewUserService(st.users, authz, auditLogger)
	finalizer := orderservice.NewFinalizer(orderservice.Config{
		Orders:   st.orders,
		Carts:    st.carts,
		Payments: intents,
		Currency: cfg.PaymentCurrency,
		Audit:    auditLogger,
		Outcomes: registry,
		Events:   events,
	})

	var pinger healthhandler.Pinger
	if st.conn != nil {
		pinger = st.conn
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.Deps{
		Logger:      lg,
		CORSOrigins: cfg.AllowedOrigins(),
		Tokens:      tokens,
		Users:       st.users,
		Authz:       authz,
		Metrics:     registry,
		Telemetry:   events,
		Health:      healthhandler.NewHandler(pinger, authz),
		User:        userhandler.NewHandler(users, tokens),
		Menu:        menuhandler.NewHandler(st.menu),
		Review:      reviewhandler.NewHandler(st.reviews),
		Cart:        carthandler.NewHandler(cartservice.NewCartService(st.carts, auditLogger)),
		Payment:     paymenthandler.NewHandler(gateway, cfg.PaymentCurrency),
		Order:       orderhandler.NewHandler(finalizer),
		Analytics:   analyticshandler.NewHandler(analyticsservice.NewAnalyticsService(st.analytics)),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		lg.Info("http_server_listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	lg.Info("http_server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http_server_shutdown", zap.Error(err))
	}

	time.Sleep(telemetry.ShutdownDrainDuration)
	otelCtx, otelCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer otelCancel()
	if err := providers.Shutdown(otelCtx); err != nil {
		lg.Warn("otel_shutdown", zap.Error(err))
	}
	lg.Info("http_server_stopped")
	return nil
}

func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	if !cfg.UseKeyPair() {
		return security.NewHMACTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	}
	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, err
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	return security.NewKeyPairTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
}
