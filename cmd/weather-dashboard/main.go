package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/narrator"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/sources"
)

const serviceName = "weather-dashboard"

func main() {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File, serviceName)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to init logger")
	}

	vocab, err := loadVocabulary(cfg.VocabularyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load story vocabulary")
	}
	logger.Info().Str("version", vocab.Version()).Msg("story vocabulary loaded")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Dataset source: a local file wins over the remote URL.
	var src weather.Source
	if cfg.Dataset.File != "" {
		src = sources.NewFileSource(cfg.Dataset.File)
	} else {
		httpClient := &http.Client{Timeout: cfg.Dataset.HTTPTimeout}
		src = sources.NewHTTPSource(httpClient, cfg.Dataset.URL, sources.BackoffConfig{
			MaxRetries:      cfg.Dataset.MaxRetries,
			InitialInterval: cfg.Dataset.RetryInterval,
			MaxInterval:     cfg.Dataset.MaxRetryInterval,
		})
	}

	memStore := store.NewMemoryStore(cfg.Store.MaxHistory, cfg.Store.MaxAge)
	service := weather.NewService(logger, memStore, m.InstrumentSource(src), m.InstrumentNarrator(narrator.New(vocab)))

	sched := scheduler.New(logger, service, cfg.Dataset.RefreshInterval, cfg.Dataset.LoadTimeout)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          httpapi.ErrorHandler(logger),
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if _, err := service.Dataset(); err != nil {
			status = "loading"
		}
		return c.JSON(fiber.Map{
			"status":  status,
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, service, vocab)

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("http server listening")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}

func loadVocabulary(path string) (*narrator.Vocabulary, error) {
	if path == "" {
		return narrator.DefaultVocabulary()
	}
	return narrator.LoadVocabularyFile(path)
}
