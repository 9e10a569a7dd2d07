// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/bptracker/internal/api"
	"github.com/starford/bptracker/internal/entryservice"
	"github.com/starford/bptracker/internal/notify"
	"github.com/starford/bptracker/internal/reading"
	"github.com/starford/bptracker/internal/sse"
	"github.com/starford/bptracker/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// initLogger installs the structured JSON logger as the default. def is used
// unless WithLogOutput was given.
func (a *application) initLogger(def io.Writer) *slog.Logger {
	out := a.logOutput
	if out == nil {
		out = def
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// access says whether a command can change entries. Read-only commands never
// connect to the MQTT broker.
type access int

const (
	readOnly access = iota
	readWrite
)

// openService opens storage and, for readWrite, the optional MQTT publisher,
// and returns the entry service with their hooks attached. The returned close
// function releases both.
func (a *application) openService(logger *slog.Logger, mode access, hooks ...entryservice.EventHook) (*entryservice.Service, func(), error) {
	cfg := a.config

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Target())
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	var pub notify.Publisher
	if mode == readWrite {
		pub = a.publisher
		if pub == nil && cfg.MQTT.Enabled {
			p, err := notify.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
			if err != nil {
				// Notifications are best effort; entries are still stored.
				logger.Warn("MQTT disabled", slog.String("broker", cfg.MQTT.Broker), slog.String("error", err.Error()))
			} else {
				pub = p
			}
		}
	}
	if pub != nil {
		hooks = append(hooks, mqttHook(pub, logger))
	}

	closeFn := func() {
		if pub != nil {
			_ = pub.Close()
		}
		if err := store.Close(); err != nil {
			logger.Error("storage close failed", slog.String("error", err.Error()))
		}
	}
	return entryservice.NewService(store, hooks...), closeFn, nil
}

func mqttHook(pub notify.Publisher, logger *slog.Logger) entryservice.EventHook {
	return func(_ context.Context, kind string, r reading.Reading) {
		if err := pub.Publish(notify.Event{Kind: kind, Reading: r, Timestamp: time.Now()}); err != nil {
			logger.Warn("MQTT publish failed",
				slog.String("kind", kind), slog.Int64("id", r.ID), slog.String("error", err.Error()))
		}
	}
}

func sseHook(broker *sse.Broker) entryservice.EventHook {
	return func(_ context.Context, kind string, r reading.Reading) {
		broker.PublishEntryEvent(kind, r.ID)
	}
}

// newHTTPHandler builds the root router: middleware, health checks, the API
// index and the /api routes.
func newHTTPHandler(cfg *Config, svc *entryservice.Service, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", api.Index)

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(svc, cfg.Entry.RESTDefaults(), cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.initLogger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.Bool("auth_enabled", cfg.Auth.AuthEnabled()),
		slog.Bool("mqtt_enabled", cfg.MQTT.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, closeService, err := app.openService(logger, readWrite, sseHook(broker))
	if err != nil {
		return err
	}
	defer closeService()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// The CSV file may be edited by hand or by the console; tell browsers.
	if cfg.Storage.Backend == storage.BackendCSV {
		g.Go(func() error {
			err := storage.WatchFile(gCtx, cfg.Storage.CSVPath, logger, func() {
				broker.PublishEntryEvent(sse.KindChanged, 0)
			})
			if err != nil {
				logger.Warn("data file watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Ends open event streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		cancel()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
