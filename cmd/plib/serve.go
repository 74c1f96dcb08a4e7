package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franz/photo-librarian/internal/api"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the library as a local JSON API",
	Long: `Start a local HTTP server exposing the library commands as JSON
endpoints under /api, plus /healthz and Prometheus metrics on /metrics.

The server binds to 127.0.0.1 by default and has no authentication.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8742", "Listen address")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	srv := &http.Server{
		Addr:              GetConfigString("addr", "127.0.0.1:8742"),
		Handler:           api.New(a).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		util.InfoLog("Listening on http://%s", srv.Addr)
		util.InfoLog("Library: %s", a.LibraryRoot())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	util.InfoLog("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.WarnLog("Server shutdown error: %v", err)
	}
	return nil
}
