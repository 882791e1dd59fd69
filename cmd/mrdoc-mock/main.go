// Package main runs the in-memory MrDoc backend used for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mrdoc/internal/logger"
	"mrdoc/internal/mockserver"
)

var (
	addr     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mrdoc-mock",
	Short: "Serve an in-memory MrDoc API",
	Long: `mrdoc-mock serves the doctor, appointment and chatbot routes of the MrDoc API
from memory, seeded with a few doctors. State is lost on exit.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         serve,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
}

func serve(cmd *cobra.Command, _ []string) error {
	if err := logger.Configure(logLevel, "", false); err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}

	mock, err := mockserver.New()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Mock API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down mock API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
