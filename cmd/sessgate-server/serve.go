package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/sessgate/internal/core/service"
	"github.com/yndnr/sessgate/internal/infra/buildinfo"
	"github.com/yndnr/sessgate/internal/infra/confloader"
	"github.com/yndnr/sessgate/internal/infra/shutdown"
	"github.com/yndnr/sessgate/internal/infra/tlsroots"
	"github.com/yndnr/sessgate/internal/server/config"
	"github.com/yndnr/sessgate/internal/server/forwarder"
	"github.com/yndnr/sessgate/internal/server/httpserver"
	"github.com/yndnr/sessgate/internal/server/httpserver/handler"
	"github.com/yndnr/sessgate/internal/server/protocol"
	"github.com/yndnr/sessgate/internal/telemetry/logger"
	"github.com/yndnr/sessgate/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

// serve wires every component and blocks until shutdown completes.
func serve(ctx context.Context, cfg *config.ServerConfig, configPath string, flags map[string]any) error {
	res, err := protocol.Resolve(cfg)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting sessgate-server",
		"version", buildinfo.Get().Version,
		"config_file", configPath,
		"config", config.Sanitize(cfg),
	)

	metrics := metric.NewRegistry()

	sessions := service.NewSessionRegistry(
		service.WithMetrics(metrics),
		service.WithLogger(log),
	)
	metrics.MustRegister(metric.NewSessionCollector(sessions))

	roots, err := tlsroots.LoadBackendRoots(cfg.Backend.CAFile)
	if err != nil {
		return fmt.Errorf("load backend CA: %w", err)
	}

	fwd := forwarder.New(res.Backend, res.BackendWebSocket,
		forwarder.WithLogger(log),
		forwarder.WithMetrics(metrics),
		forwarder.WithRootCAs(roots),
	)

	h := handler.New(handler.Config{
		Sessions:         sessions,
		Forwarder:        fwd,
		VerifyBackendTLS: res.VerifyBackendTLS,
		StaticPath:       cfg.Static.Path,
		DataPath:         cfg.Data.Path,
		Metrics:          metrics,
		Logger:           log,
	})

	routerCfg := &httpserver.RouterConfig{
		Handler:    h,
		StaticPath: cfg.Static.Path,
		Security: httpserver.SecurityConfig{
			AdvertisedWebSocket: res.AdvertisedWebSocket.String(),
			Development:         cfg.Security.Development,
			TLS:                 res.ListenTLS,
		},
		CORSAllowedOrigins: cfg.Security.AllowedOrigins,
		Logger:             log,
	}
	if cfg.Security.LoginRateLimit > 0 {
		routerCfg.LoginLimiter = service.NewRateLimiterRegistry(cfg.Security.LoginRateLimit)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown("forwarder", func(context.Context) error {
		fwd.CloseIdleConnections()
		return nil
	})

	srvOpts := []httpserver.Option{httpserver.WithLogger(log)}
	if res.ListenTLS {
		certs, err := tlsroots.NewWatcher(cfg.Proxy.CertFile, cfg.Proxy.KeyFile,
			tlsroots.WithPassphrase(cfg.Proxy.KeyPassphrase),
			tlsroots.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("load proxy certificate: %w", err)
		}
		certs.StartAsync()
		shutdownHandler.OnShutdown("certificate watcher", func(context.Context) error {
			certs.Stop()
			return nil
		})
		srvOpts = append(srvOpts, httpserver.WithTLS(certs))
	}

	srv := httpserver.New(res.Listen.Addr(), httpserver.NewRouter(routerCfg), srvOpts...)
	if err := srv.Listen(); err != nil {
		return err
	}
	startServer(srv, shutdownHandler)
	shutdownHandler.OnShutdown("http server", srv.Shutdown)

	log.Info("proxy listening",
		"addr", srv.Addr(),
		"tls", res.ListenTLS,
		"backend", res.Backend.String(),
		"backend_ws", res.BackendWebSocket.String(),
	)

	if cfg.Metrics.Addr != "" {
		ops := httpserver.New(cfg.Metrics.Addr,
			httpserver.NewOpsRouter(metrics, sessions, log),
			httpserver.WithLogger(log),
		)
		if err := ops.Listen(); err != nil {
			return err
		}
		startServer(ops, shutdownHandler)
		shutdownHandler.OnShutdown("metrics server", ops.Shutdown)
		log.Info("metrics listening", "addr", ops.Addr())
	}

	if configPath != "" {
		if err := watchConfig(ctx, configPath, flags, log, shutdownHandler); err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// startServer serves srv in the background. A serve failure starts
// shutdown.
func startServer(srv *httpserver.Server, h *shutdown.Handler) {
	go func() {
		if err := srv.Serve(); err != nil {
			h.Trigger(fmt.Errorf("serve %s: %w", srv.Addr(), err))
		}
	}()
}

// watchConfig applies log level changes from the configuration file
// without a restart. Other settings take effect on the next start.
func watchConfig(ctx context.Context, path string, flags map[string]any, log *slog.Logger, h *shutdown.Handler) error {
	w, err := confloader.NewWatcher(path, func(string) {
		before := logger.GetLevel()
		if err := reloadLogLevel(ctx, path, flags); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if after := logger.GetLevel(); after != before {
			log.Info("log level changed", "from", before, "to", after)
		}
	}, confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}

	w.StartAsync()
	h.OnShutdown("config watcher", func(context.Context) error {
		return w.Stop()
	})
	return nil
}
