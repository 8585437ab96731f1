package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/hackgods/patient-intake-scheduling/internal/api"
	"github.com/hackgods/patient-intake-scheduling/internal/appointment"
	"github.com/hackgods/patient-intake-scheduling/internal/config"
	"github.com/hackgods/patient-intake-scheduling/internal/db"
	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/intake"
	"github.com/hackgods/patient-intake-scheduling/internal/notify"
	"github.com/hackgods/patient-intake-scheduling/internal/observability/metrics"
	"github.com/hackgods/patient-intake-scheduling/internal/patient"
	redisclient "github.com/hackgods/patient-intake-scheduling/internal/redis"
	"github.com/hackgods/patient-intake-scheduling/internal/session"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", "api-server", "env", cfg.Env)
	logger.Info("api-server starting up", "http_port", cfg.HTTPPort, "llm_provider", cfg.LLMProvider)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, cfg, logger); err != nil {
		logger.Error("api-server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("api-server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis", "addr", cfg.RedisAddr)

	llm, closeLLM, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLLM()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	bookings := appointment.NewService(
		appointment.NewPgRepository(pgPool, cfg.Location()),
		redisclient.NewRedisLocker(rdb, cfg.LockTTL),
		cfg,
		logger.With("component", "appointment"),
	)

	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set; intake forms will only be logged")
	}

	machine := intake.NewMachine(intake.Dependencies{
		Extractor: extract.NewOracle(llm, "", logger.With("component", "extract")),
		Patients:  patient.NewLookup(patient.NewPgRepository(pgPool), logger.With("component", "patient")),
		Slots:     bookings,
		Bookings:  bookings,
		Forms:     notify.NewIntakeForms(sender, cfg.IntakeFormPath, logger.With("component", "notify")),
		Metrics:   intakeMetrics,
		Logger:    logger.With("component", "intake"),
	})

	runner := intake.NewRunner(
		machine,
		session.NewRedisStore(rdb, cfg.ConversationTTL, otel.Tracer("intake.internal.session")),
		redisclient.NewRedisLocker(rdb, cfg.TurnTimeout),
		intakeMetrics,
		logger.With("component", "runner"),
	)

	handler := api.NewRouter(api.RouterConfig{
		Conversations: runner,
		Reports:       bookings,
		Postgres:      pgPool,
		Redis:         rdb,
		Metrics:       registry,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.TurnTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down api-server", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// buildLLMClient returns the selected provider, with the other one as a
// fallback when it is configured too.
func buildLLMClient(ctx context.Context, cfg config.Config, logger *logging.Logger) (extract.LLMClient, func(), error) {
	var (
		gemini  extract.LLMClient
		bedrock extract.LLMClient
		closers []func()
	)

	if cfg.GeminiAPIKey != "" {
		client, err := extract.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		gemini = client
	}

	if cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		bedrock = extract.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	primary, secondary := gemini, bedrock
	if cfg.LLMProvider == config.ProviderBedrock {
		primary, secondary = bedrock, gemini
	}

	switch {
	case primary == nil:
		logger.Warn("selected LLM provider is not configured, using the other one", "provider", cfg.LLMProvider)
		return secondary, closeAll, nil
	case secondary == nil:
		return primary, closeAll, nil
	default:
		return extract.NewFallbackLLMClient(primary, secondary, logger), closeAll, nil
	}
}
