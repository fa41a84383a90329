// Package http runs the Echo server and its probes.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Serve starts e on addr and blocks until ctx is cancelled, then drains
// in-flight requests.
func Serve(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	e.Server.ReadHeaderTimeout = readHeaderTimeout

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
