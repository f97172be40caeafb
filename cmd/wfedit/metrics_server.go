package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-flow/pkg/health"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/metrics"
)

const (
	systemMetricsInterval = 5 * time.Second
	shutdownTimeout       = 2 * time.Second
)

// serveMetrics exposes reg at /metrics and checker at /healthz on addr until
// stop is called or ctx ends. It returns the bound address so ":0" can be
// used in tests.
func serveMetrics(ctx context.Context, addr string, reg *metrics.Registry, checker *health.Checker, logger logging.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	mux.Handle("/healthz", checker.HTTPHandler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Error(err))
		}
	}()

	go func() {
		defer close(done)
		start := time.Now()
		ticker := time.NewTicker(systemMetricsInterval)
		defer ticker.Stop()

		reg.UpdateSystemMetrics(start)
		for {
			select {
			case <-ticker.C:
				reg.UpdateSystemMetrics(start)
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("metrics server started", logging.String("addr", ln.Addr().String()))

	stop := func() {
		cancel()
		<-done
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", logging.Error(err))
		}
	}
	return ln.Addr().String(), stop, nil
}
