package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/bptracker/internal/console"
	"github.com/starford/bptracker/internal/mcpserver"
	"github.com/starford/bptracker/internal/report"
)

// Track runs the interactive console on in and out. Logs go to stderr.
func Track(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.initLogger(os.Stderr)

	svc, closeService, err := app.openService(logger, readWrite)
	if err != nil {
		return err
	}
	defer closeService()

	return console.New(svc, app.config.Entry.ConsoleDefaults(), in, out).Run(ctx)
}

// Stats prints summary statistics once.
func Stats(ctx context.Context, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.initLogger(os.Stderr)

	svc, closeService, err := app.openService(logger, readOnly)
	if err != nil {
		return err
	}
	defer closeService()

	s, ok, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return report.WriteSummary(out, s, ok)
}

// Export writes every reading and the statistics to an Excel workbook at path.
func Export(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.initLogger(os.Stderr)

	svc, closeService, err := app.openService(logger, readOnly)
	if err != nil {
		return err
	}
	defer closeService()

	all, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := report.WriteXLSX(f, all); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("export written", slog.String("path", path), slog.Int("entries", len(all)))
	return nil
}

// ServeMCP serves the MCP tools over stdio until stdin closes. stdout carries
// the protocol, so logs go to stderr.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.initLogger(os.Stderr)

	svc, closeService, err := app.openService(logger, readWrite)
	if err != nil {
		return err
	}
	defer closeService()

	logger.Info("MCP server starting", slog.String("storage_backend", app.config.Storage.Backend))
	return mcpserver.New(svc, app.config.Entry.RESTDefaults()).ServeStdio()
}
