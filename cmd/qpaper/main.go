package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-questionpaper/config"
)

func main() {
	log := newLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := run(context.Background(), os.Args[1:], os.Getenv, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// run owns the app lifetime so every exit path closes the browser and the
// history database.
func run(ctx context.Context, args []string, getenv func(string) string, log *slogLogger) error {
	cfg := config.FromEnv(config.Defaults(), getenv)

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer app.Close()

	if len(args) > 0 && args[0] == "batch" {
		if err := runBatch(ctx, app, args[1:]); err != nil {
			return fmt.Errorf("batch failed: %w", err)
		}
		return nil
	}

	srv := router.NewFiberAdapter(fiberAppInitializer(cfg))
	app.SetupRoutes(srv.Router())
	app.StartCleanup(cfg.Paper.CleanupInterval)

	addr := cfg.Addr()
	log.Infof("starting server on http://%s", addr)
	log.Infof("paper API: http://%s%s", addr, cfg.Server.BasePath)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serveUntil(sigCtx, srv, addr, log)
}

type server interface {
	Serve(address string) error
	Shutdown(ctx context.Context) error
}

// serveUntil runs srv until it fails or ctx is done, then shuts it down.
func serveUntil(ctx context.Context, srv server, addr string, log *slogLogger) error {
	served := make(chan error, 1)
	go func() { served <- srv.Serve(addr) }()

	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

func runBatch(ctx context.Context, app *App, args []string) error {
	flags := flag.NewFlagSet("batch", flag.ContinueOnError)
	from := flags.String("from", "", "path to a JSON array of generation requests")
	if err := flags.Parse(args); err != nil {
		return err
	}
	records, err := app.Batch.RunFile(ctx, *from)
	for _, record := range records {
		app.Logger.Infof("generated %s (%d pages) at %s", record.Filename, record.Pages, record.Path)
	}
	return err
}

func fiberAppInitializer(cfg config.Config) func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		fiberApp := fiber.New(fiber.Config{
			AppName:   "qpaper",
			BodyLimit: int(cfg.Server.MaxBodyBytes),
		})

		fiberApp.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,DELETE,OPTIONS",
			AllowHeaders: "Content-Type",
		}))

		return fiberApp
	}
}
