package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/josswuzhur/cloud-notes-app/config"
)

// runServer serves until SIGINT/SIGTERM, then drains in-flight requests.
// Every request context derives from baseCtx, so cancelling it on shutdown
// ends the open push channels; their live queries release their store
// subscriptions as the connections close, and Shutdown can then return.
func runServer(handler http.Handler, cfg config.ServerConfig) error {
	baseCtx, stopConns := context.WithCancel(context.Background())
	defer stopConns()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-signalChan:
		slog.Info("shutting down", "signal", sig.String())
	}

	stopConns()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
