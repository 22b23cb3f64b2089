package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidpace-sender/form"
	"vidpace-sender/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compose form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer closeStore()

		h := handlers.NewFormHandler(store, newBackend(), form.WithAutoHide(cfg.StatusAutoHide))
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logrus.WithFields(logrus.Fields{
				"addr":    cfg.Addr(),
				"backend": cfg.APIBaseURL,
				"store":   cfg.FieldStore,
			}).Info("form server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logrus.Info("shutting down form server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("shutdown error")
			return err
		}
		return nil
	},
}
