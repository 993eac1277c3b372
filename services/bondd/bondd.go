// Package bondd runs the bond host as a long lived HTTP service.
package bondd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	deployment "olympuspro/config"
	"olympuspro/core/host"
	"olympuspro/native/common"
	"olympuspro/observability/logging"
	"olympuspro/observability/metrics"
	telemetry "olympuspro/observability/otel"
	"olympuspro/services/bondd/bootstrap"
	"olympuspro/services/bondd/config"
	"olympuspro/services/bondd/server"
	"olympuspro/storage"
)

const serviceName = "bondd"

// Main runs the daemon until SIGINT or SIGTERM.
func Main() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/bondd/config.yaml", "path to bondd config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.SetupWithOptions(serviceName, cfg.Environment, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer db.Close()

	h := host.New(db)
	h.SetLogger(logger.With(slog.String("component", "host")))
	h.SetObserver(metrics.Host())
	codes := bootstrap.RegisterCodes(h, common.NewPauseSet(cfg.Paused))

	manifest, err := ensureDeployment(h, codes, cfg, logger)
	if err != nil {
		return err
	}

	proxies, err := server.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	api := server.New(h, server.Config{
		Auth: server.AuthConfig{
			HMACSecret: cfg.Auth.HMACSecret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  cfg.Auth.ClockSkew,
		},
		RateLimit: server.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
			TrustedProxies:    proxies,
		},
		Manifest: manifest,
		Logger:   logger,
	})
	httpServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      otelhttp.NewHandler(api, serviceName),
		ReadTimeout:  cfg.Timeouts.Read,
		WriteTimeout: cfg.Timeouts.Write,
		IdleTimeout:  cfg.Timeouts.Idle,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("bondd listening", slog.String("addr", cfg.ListenAddress))
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			_ = httpServer.Close()
			return err
		}
		logger.Info("bondd stopped")
		return nil
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ensureDeployment applies the deployment file once and reuses the saved
// manifest afterwards.
func ensureDeployment(h *host.Host, codes bootstrap.Codes, cfg config.Config, logger *slog.Logger) (*bootstrap.Manifest, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(cfg.DataDir, "manifest.json")
	manifest, ok, err := bootstrap.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	if ok {
		if manifest.Codes != codes {
			return nil, fmt.Errorf("manifest %s was written with codes %+v, host registered %+v", path, manifest.Codes, codes)
		}
		return manifest, nil
	}
	if strings.TrimSpace(cfg.Deployment) == "" {
		logger.Warn("no deployment configured; serving an empty host")
		return nil, nil
	}
	plan, err := deployment.LoadDeployment(cfg.Deployment)
	if err != nil {
		return nil, err
	}
	manifest, err = bootstrap.Deploy(h, codes, plan, logger)
	if err != nil {
		return nil, err
	}
	if err := bootstrap.SaveManifest(path, manifest); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	return manifest, nil
}
