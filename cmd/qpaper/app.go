package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	historybun "github.com/goliatone/go-questionpaper/adapters/history/bun"
	paperhtml "github.com/goliatone/go-questionpaper/adapters/html"
	"github.com/goliatone/go-questionpaper/adapters/paperapi"
	paperrouter "github.com/goliatone/go-questionpaper/adapters/router"
	"github.com/goliatone/go-questionpaper/adapters/scriptfonts"
	storefs "github.com/goliatone/go-questionpaper/adapters/store/fs"
	papercmd "github.com/goliatone/go-questionpaper/command"
	"github.com/goliatone/go-questionpaper/config"
	"github.com/goliatone/go-questionpaper/paper"
)

// App holds the server dependencies.
type App struct {
	Config   config.Config
	Logger   paper.Logger
	DB       *bun.DB
	Service  paper.Service
	Handler  *paperrouter.Handler
	Cleanup  *papercmd.CleanupPapersHandler
	Batch    *papercmd.BatchCommand
	Registry *gcmd.Registry

	chromium      *paperhtml.ChromiumEngine
	subscriptions []dispatcher.Subscription
	stop          context.CancelFunc
	wg            sync.WaitGroup
}

// NewApp opens storage and history and wires the service, commands and HTTP
// handler.
func NewApp(ctx context.Context, cfg config.Config, logger paper.Logger) (*App, error) {
	if logger == nil {
		logger = paper.NopLogger{}
	}
	if err := os.MkdirAll(cfg.Storage.ArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.History.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	history := historybun.NewHistory(db)
	if err := history.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	var fonts paper.FontStrategy = paper.StandardFonts{}
	if cfg.Paper.BengaliFont != "" {
		strategy, err := scriptfonts.Load(cfg.Paper.BengaliFont)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to load bengali font: %w", err)
		}
		fonts = strategy
	}

	svc := paper.NewService(paper.ServiceConfig{
		History: history,
		Store:   storefs.NewStore(cfg.Storage.ArtifactDir, cfg.Storage.BaseURL),
		Fonts:   fonts,
		Images: paper.NewImageResolver(paper.ImageResolverConfig{
			TempDir:      cfg.Storage.TempDir,
			Timeout:      cfg.Paper.ImageTimeout,
			Logger:       logger,
			AllowedRoots: cfg.Paper.ImageRoots,
			AllowedHosts: cfg.Paper.ImageHosts,
		}),
		Logger:           logger,
		Retention:        cfg.Paper.Retention,
		FilenameTemplate: cfg.Paper.FilenameTemplate,
		Letterhead:       cfg.Paper.Letterhead,
	})

	app := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Service:  svc,
		Cleanup:  papercmd.NewCleanupPapersHandler(svc),
		Batch:    papercmd.NewBatchCommand(svc, nil),
		Registry: gcmd.NewRegistry(),
	}

	var preview paperapi.PreviewRenderer
	if cfg.Preview.Enabled {
		htmlRenderer, err := paperhtml.NewRenderer()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to compile preview template: %w", err)
		}
		app.chromium = &paperhtml.ChromiumEngine{
			BrowserPath: cfg.Preview.ChromiumPath,
			Headless:    cfg.Preview.Headless,
			Timeout:     cfg.Preview.Timeout,
			Args:        cfg.Preview.Args,
		}
		preview = &paperhtml.Previewer{
			HTML:          htmlRenderer,
			Printer:       app.chromium,
			PageMargin:    cfg.Preview.PageMargin,
			BlockExternal: cfg.Preview.BlockExternal,
		}
	}

	app.Handler = paperrouter.NewHandler(paperrouter.Config{
		Service:      svc,
		Preview:      preview,
		BasePath:     cfg.Server.BasePath,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})

	subs, err := registerHandlers(app.Registry, svc, app.Cleanup)
	app.subscriptions = subs
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	return app, nil
}

// SetupRoutes registers the paper API on r.
func (a *App) SetupRoutes(r any) {
	a.Handler.RegisterRoutes(r)
}

// StartCleanup runs the cleanup command every interval until Close.
func (a *App) StartCleanup(interval time.Duration) {
	if interval <= 0 || a.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	run := a.Cleanup.CronHandler()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := run(); err != nil {
					a.Logger.Errorf("cleanup failed: %v", err)
				}
			}
		}
	}()
}

// Close stops background work and releases the browser and database.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
		a.wg.Wait()
	}
	for _, sub := range a.subscriptions {
		sub.Unsubscribe()
	}
	if a.chromium != nil {
		_ = a.chromium.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
