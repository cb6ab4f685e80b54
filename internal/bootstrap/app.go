// Package bootstrap wires configuration into the components shared by the
// server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/adapter/chromedp_reader"
	"github.com/user/bookmeta/internal/adapter/googlebooks"
	"github.com/user/bookmeta/internal/adapter/httpprobe"
	"github.com/user/bookmeta/internal/adapter/memory"
	"github.com/user/bookmeta/internal/adapter/postgres"
	redis_adapter "github.com/user/bookmeta/internal/adapter/redis"
	"github.com/user/bookmeta/internal/adapter/static"
	"github.com/user/bookmeta/internal/delivery/http/handler"
	"github.com/user/bookmeta/internal/delivery/http/router"
	"github.com/user/bookmeta/internal/extractor"
	"github.com/user/bookmeta/internal/injector"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/internal/proxy"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/internal/usecase"
	"github.com/user/bookmeta/pkg/config"
	"github.com/user/bookmeta/pkg/metrics"
)

// App holds the long-lived components. Close releases them.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Proxies  *proxy.Manager
	Store    *usecase.Store
	Selector *extractor.Selector
	Browser  *chromedp_reader.Browser
	Fetcher  *static.Fetcher

	closers []func()
}

// New builds the application. It connects to the configured record store
// but starts no browser until a page is opened.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics.New(reg),
		Proxies:  proxy.NewManager(cfg.ProxyURLs, cfg.UserAgents),
	}

	repo, err := app.openRecordStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = usecase.NewStore(repo, logger.Named("store"), app.Metrics)

	prober := httpprobe.New(cfg.ImageProbeTimeout(), app.Proxies)
	opts := extractor.Options{
		Logger:        logger.Named("extractor"),
		Metrics:       app.Metrics,
		Covers:        normalize.NewCoverResolver(prober, cfg.ImageProbeTimeout(), logger.Named("covers"), app.Metrics),
		SettleTimeout: cfg.SettleTimeout(),
	}
	google := extractor.GoogleBooksOptions{
		Catalog:                googlebooks.New(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.CatalogTimeout(), logger.Named("catalog"), app.Metrics),
		CatalogTimeout:         cfg.CatalogTimeout(),
		Languages:              normalize.NewLanguageNamer(cfg.LanguageDisplayLocale),
		VerifyConstructedCover: cfg.VerifyConstructedCover,
		Prober:                 prober,
	}
	app.Selector = extractor.NewSelector(extractor.All(opts, google)...)

	app.Browser = chromedp_reader.NewBrowser(chromedp_reader.Config{
		Headless:        cfg.Headless,
		PageLoadTimeout: cfg.PageLoadTimeout(),
		SettlePoll:      cfg.SettlePoll(),
		AcceptLanguage:  cfg.AcceptLanguage,
		RemoteURL:       cfg.BrowserWSURL,
	}, app.Proxies, logger.Named("browser"))
	app.closers = append(app.closers, app.Browser.Close)
	app.Fetcher = static.NewFetcher(cfg.PageLoadTimeout(), app.Proxies)

	return app, nil
}

func (a *App) openRecordStore(ctx context.Context) (repository.RecordStore, error) {
	switch a.Config.StoreBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.Config.RedisAddr,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		a.Logger.Info("redis connection established", zap.String("addr", a.Config.RedisAddr))
		return redis_adapter.NewRecordStore(rdb, a.Config.RecordKey), nil

	case config.BackendPostgres:
		dbpool, err := pgxpool.New(ctx, a.Config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		a.closers = append(a.closers, dbpool.Close)
		store := postgres.NewRecordStore(dbpool, a.Config.RecordKey)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("unable to prepare schema: %w", err)
		}
		a.Logger.Info("postgres connection pool established")
		return store, nil
	}
	return memory.NewRecordStore(), nil
}

// Opener returns the page source: the live browser, or plain HTTP fetches
// when staticOnly is set.
func (a *App) Opener(staticOnly bool) repository.PageOpener {
	if staticOnly {
		return a.Fetcher
	}
	return chromedp_reader.Opener{Browser: a.Browser}
}

func (a *App) Extraction(opener repository.PageOpener) usecase.Extraction {
	return usecase.NewExtractionUseCase(a.Selector, opener, a.Store, a.Logger.Named("extraction"), a.Metrics)
}

func (a *App) Injection() usecase.Injection {
	filler := chromedp_reader.NewFormFiller(a.Browser, chromedp_reader.FormOptions{
		SubmitSelector: a.Config.FormSubmitSelector,
		SubmitTimeout:  a.Config.FormSubmitTimeout(),
		Poll:           a.Config.SettlePoll(),
	}, a.Logger.Named("injector"))
	return usecase.NewInjectionUseCase(a.Store, filler, injector.DefaultMapping, a.Logger.Named("injector"))
}

func (a *App) Watcher() *usecase.Watcher {
	return usecase.NewWatcher(a.Store, a.Config.WatchInterval(), a.Logger.Named("watcher"))
}

// Server returns the HTTP API server.
func (a *App) Server() *http.Server {
	h := handler.NewHandler(a.Extraction(a.Opener(false)), a.Injection(), a.Store, a.Logger.Named("http"))
	return &http.Server{
		Addr:         ":" + a.Config.ServerPort,
		Handler:      router.New(h, a.Logger.Named("http"), a.Metrics, a.Registry),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
