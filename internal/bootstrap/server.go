package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/tcpserver"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run serves the line protocol and, when an HTTP address is configured, the
// ops API. It blocks until ctx is cancelled or one of the servers fails.
func Run(ctx context.Context, cfg *config.Config, tcp *tcpserver.Server, httpHandler http.Handler, log hclog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tcp.ListenAndServe(ctx)
	})

	if cfg.HTTP.Address != "" && httpHandler != nil {
		httpSrv := &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           httpHandler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("ops api listening", "address", cfg.HTTP.Address)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
