package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"complaint_map/internal/api"
	"complaint_map/internal/config"
	"complaint_map/internal/sheets"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default HTTP_ADDR or :8080)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the complaint API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		store, provider, err := openStore(cmd.Context(), sheets.NewMetrics(reg))
		if err != nil {
			return err
		}

		// get consent out of the way before accepting requests
		credCtx, cancel := context.WithTimeout(cmd.Context(), config.CredentialTimeout)
		_, err = provider.GetCredential(credCtx)
		cancel()
		if err != nil {
			return err
		}

		initCtx, cancel := config.WithWriteTimeout(cmd.Context())
		err = store.EnsureComplaintSheet(initCtx)
		cancel()
		if err != nil {
			return err
		}

		if os.Getenv("ENV") == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.NewHandler(store), api.NewHTTPMetrics(reg), reg)

		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: config.HTTPReadHeaderTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().
				Str("addr", addr).
				Str("sheet_name", cfg.SheetName).
				Msg("Serving complaint API")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("HTTP server failed")
			}
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
			return err
		}

		log.Info().Msg("Shutdown complete")
		return nil
	},
}
