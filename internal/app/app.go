package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"CityPulse/internal/config"
	"CityPulse/internal/httpapi"
	"CityPulse/internal/infrastructure/events"
	"CityPulse/internal/infrastructure/llm"
	"CityPulse/internal/infrastructure/objectstore"
	"CityPulse/internal/infrastructure/scheduler"
	"CityPulse/internal/infrastructure/sources"
	"CityPulse/internal/infrastructure/storage"
	"CityPulse/internal/infrastructure/telegram"
	"CityPulse/internal/logging"
	"CityPulse/internal/ports"
	"CityPulse/internal/prompts"
	"CityPulse/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	Aggregator *usecase.Aggregator
	Travel     *usecase.TravelService
	Describer  *usecase.Describer
	Reports    *usecase.Reports

	telegram *telegram.Notifier
	kafka    *events.KafkaPublisher
	closers  []func() error
}

// New builds the advice and image use cases. Report storage is opened by EnableReports.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	promptSet, err := prompts.Load(cfg.Advisor.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	generator, err := newGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	if generator == nil {
		baseLogger.Warn("llm api key not configured, advice and image description will fail", "provider", cfg.LLM.Provider)
	}

	aggregator := usecase.NewAggregator(usecase.AggregatorDeps{
		Discussion: sources.NewReddit(cfg.Sources.Reddit, nil, baseLogger.With("component", "source.reddit")),
		News:       sources.NewNews(cfg.Sources.News, nil, baseLogger.With("component", "source.news")),
		Weather:    sources.NewWeather(cfg.Sources.Weather, cfg.City, nil, baseLogger.With("component", "source.weather")),
		Timeout:    cfg.Advisor.SourceTimeout,
		Logger:     baseLogger.With("component", "aggregator"),
	})

	advisor := usecase.NewAdvisor(usecase.AdvisorDeps{
		Generator:      generator,
		Prompts:        promptSet,
		City:           cfg.City.Name,
		SummarySignals: cfg.Advisor.SummarySignals,
		Timeout:        cfg.Advisor.GenerationTimeout,
		Logger:         baseLogger.With("component", "advisor"),
	})

	describer := usecase.NewDescriber(usecase.DescriberDeps{
		Generator: generator,
		Prompts:   promptSet,
		City:      cfg.City.Name,
		Timeout:   cfg.Advisor.GenerationTimeout,
		Logger:    baseLogger.With("component", "describer"),
	})

	app := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		Aggregator: aggregator,
		Travel:     usecase.NewTravelService(aggregator, advisor),
		Describer:  describer,
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		app.telegram = telegram.NewNotifier(tg.APIBase, tg.BotToken, tg.ChatID)
	}
	if len(cfg.Notifications.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Notifications.Kafka)
		if err != nil {
			baseLogger.Warn("kafka publisher disabled", "err", err)
		} else {
			app.kafka = publisher
			app.closers = append(app.closers, publisher.Close)
		}
	}

	baseLogger.Debug("application wired", "credentials", cfg.CredentialsSummary(), "llm_provider", cfg.LLM.Provider, "llm_model", cfg.LLM.Model)
	return app, nil
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (ports.Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewChatGenerator(llm.ChatOptions{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
		}), nil
	case config.ProviderGemini, "":
		gen, err := llm.NewGemini(ctx, llm.GeminiOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// EnableReports opens report storage and the optional image store, then builds the report use case.
func (a *Application) EnableReports(ctx context.Context) error {
	if a.Reports != nil {
		return nil
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}

	var images ports.ImageStore
	if a.cfg.Images.Bucket != "" {
		store, err := objectstore.NewS3Store(ctx, a.cfg.Images)
		if err != nil {
			return fmt.Errorf("image store: %w", err)
		}
		images = store
	}

	var notifiers []ports.ReportNotifier
	if a.telegram != nil {
		notifiers = append(notifiers, a.telegram)
	}
	if a.kafka != nil {
		notifiers = append(notifiers, a.kafka)
	}

	a.Reports = usecase.NewReports(usecase.ReportsDeps{
		Repository: repo,
		Images:     images,
		Notifiers:  notifiers,
		Logger:     a.logger.With("component", "reports"),
	})
	return nil
}

func (a *Application) openRepository(ctx context.Context) (ports.ReportRepository, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := storage.OpenPostgres(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		repo := storage.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite, "":
		db, err := storage.OpenSQLite(ctx, a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo := storage.NewSQLiteRepository(db)
		a.closers = append(a.closers, repo.Close)

		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
}

// Server builds the REST API over the wired use cases.
func (a *Application) Server() *httpapi.Server {
	services := httpapi.Services{Travel: a.Travel, Issues: a.Describer}
	if a.Reports != nil {
		services.Reports = a.Reports
	}
	return httpapi.New(a.cfg.Server, services, a.logger.With("component", "http"))
}

// Watcher builds the periodic conditions watch with every configured publisher.
func (a *Application) Watcher() *usecase.Watcher {
	var notifiers []ports.ConditionsNotifier
	if a.telegram != nil {
		notifiers = append(notifiers, a.telegram)
	}
	if a.kafka != nil {
		notifiers = append(notifiers, a.kafka)
	}
	return usecase.NewWatcher(
		scheduler.NewTickerScheduler(a.cfg.Watcher.Interval),
		a.Aggregator,
		a.logger.With("component", "watcher"),
		notifiers...,
	)
}

// Close releases storage and broker connections in reverse order of creation.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
