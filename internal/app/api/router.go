package api

import (
	"log/slog"
	"time"

	"bookly/internal/app/convert"
	"bookly/internal/app/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogchi "github.com/samber/slog-chi"
)

type Config struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`

	// MaxUploadBytes bounds the uploaded markdown file size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type API struct {
	cfg    *Config
	logger *slog.Logger

	converter *convert.Service
	artifacts *store.Store

	metricsReg *prometheus.Registry
}

func NewAPI(cfg *Config, logger *slog.Logger, converter *convert.Service, artifacts *store.Store, metricsReg *prometheus.Registry) *API {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	return &API{
		cfg: cfg,

		logger: logger,

		converter: converter,
		artifacts: artifacts,

		metricsReg: metricsReg,
	}
}

func (api *API) NewRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(slogchi.New(api.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.StripSlashes)

	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.HandlerFor(api.metricsReg, promhttp.HandlerOpts{}))

	router.Get("/api/health", api.health)
	router.Get("/api/voices", api.voices)
	router.Get("/api/narrators", api.narrators)

	router.Post("/api/convert", api.convert)
	router.Post("/api/voice-sample", api.voiceSample)

	router.Get("/audio/{filename}", api.audio)

	return router
}
