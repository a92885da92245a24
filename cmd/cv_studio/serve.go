package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/server"
)

var (
	servePort     int
	serveNoExport bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview server",
	Long: `Start an HTTP server that serves the live CV preview and the editing API.
Edits are saved to the configured storage. PDF export needs Chrome; without it
the server runs with export disabled.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().BoolVar(&serveNoExport, "no-export", false, "Do not start a browser; PDF export is disabled")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := settings.Port
	if servePort != 0 {
		port = servePort
	}

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.report.Discarded {
		logger.Warn("saved state was corrupt and has been reset")
	}

	persister := sess.newPersister()
	detach := persister.Attach(sess.store)
	defer func() {
		detach()
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := persister.Close(closeCtx); err != nil {
			logger.Error("failed to save state on exit", "error", err)
		}
	}()

	var exporter server.Exporter
	if !serveNoExport {
		engine, err := capture.NewChromeEngine(ctx, capture.ChromeOptions{
			ExecPath: settings.ChromePath,
			Logger:   observability.Component(logger, "capture"),
		})
		if err != nil {
			logger.Warn("browser unavailable, pdf export disabled", "error", err)
		} else {
			defer engine.Close()
			exporter = newExporter(engine)
		}
	}

	srv := server.New(sess.store, exporter, server.Config{
		Port:              port,
		Logger:            logger,
		RequestsPerMinute: settings.RateLimitPerMinute,
		ExportPerMinute:   settings.ExportPerMinute,
	})

	fmt.Fprintf(os.Stderr, "Preview available at http://localhost:%d/\n", port)
	return srv.Start(ctx)
}

// newExporter wraps engine with the configured scale and timeout.
func newExporter(engine capture.Engine) *capture.Exporter {
	return capture.NewExporter(engine,
		capture.WithScale(settings.ExportScale),
		capture.WithTimeout(settings.ExportTimeout()),
		capture.WithLogger(observability.Component(logger, "capture")),
	)
}
