package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

type RouterConfig struct {
	Conversations ConversationService
	Reports       ReportService
	Postgres      Pinger
	Redis         *redis.Client
	Metrics       prometheus.Gatherer
	Logger        *logging.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", startConversationHandler(cfg.Conversations))
		r.Get("/{id}", getConversationHandler(cfg.Conversations))
		r.Post("/{id}/messages", postMessageHandler(cfg.Conversations))
	})

	r.Get("/admin/appointments/report", reportHandler(cfg.Reports, logger))

	return r
}
