package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AvaProtocol/aa-provider/pkg/logger"
)

// Start serves gatherer on addr at /metrics until ctx is done. Serving errors
// are delivered on the returned channel.
func Start(ctx context.Context, addr string, gatherer prometheus.Gatherer, lgr logger.Logger) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	return Serve(ctx, ln, gatherer, lgr), nil
}

func Serve(ctx context.Context, ln net.Listener, gatherer prometheus.Gatherer, lgr logger.Logger) <-chan error {
	lgr = logger.EnsureLogger(lgr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errC := make(chan error, 1)
	go func() {
		lgr.Info("Starting metrics server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return errC
}
