package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "tidepool/server"
	"tidepool/server/catalog"
	servernet "tidepool/server/internal/net"
	"tidepool/server/internal/observability"
	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	loggingSinks "tidepool/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	settings := loadSettings(getenv, telemetryLogger)
	settings.observability.EnablePprofTrace = settings.observability.EnablePprofTrace || cfg.Observability.EnablePprofTrace

	router, closeSinks, err := newRouter(settings)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
		closeSinks()
	}()

	hubCfg := settings.hub
	if settings.catalogOverrides != "" {
		cat, err := catalog.Load(settings.catalogOverrides)
		if err != nil {
			return fmt.Errorf("failed to load catalog overrides: %w", err)
		}
		hubCfg.Catalog = cat
	}
	metrics := telemetry.NewCounters()
	hubCfg.Logger = telemetryLogger
	hubCfg.Metrics = metrics

	hub := server.NewHubWithConfig(hubCfg, router)
	scheduler := server.NewScheduler(hub, router)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:        telemetryLogger,
		Observability: settings.observability,
		Metrics:       metrics,
	})

	srv := &http.Server{Addr: settings.addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	telemetryLogger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.CloseSubscribers(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// newRouter builds the event router with the sinks named in the settings.
// The returned func closes any files the sinks write to.
func newRouter(s settings) (*logging.Router, func(), error) {
	logConfig := s.logging
	var named []logging.NamedSink
	var files []*os.File

	if logConfig.HasSink(logging.SinkConsole) {
		named = append(named, logging.NamedSink{
			Name: logging.SinkConsole,
			Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console),
		})
	}
	if logConfig.HasSink(logging.SinkJSON) && logConfig.JSON.FilePath != "" {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open json log %s: %w", logConfig.JSON.FilePath, err)
		}
		files = append(files, file)
		named = append(named, logging.NamedSink{
			Name: logging.SinkJSON,
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logging.ClockFunc(time.Now), logConfig, named)
	if err != nil {
		for _, f := range files {
			f.Close()
		}
		return nil, nil, fmt.Errorf("failed to construct logging router: %w", err)
	}
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}
	return router, closeFiles, nil
}
