package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appservices "github.com/capcheck-io/capcheck/internal/application/services"
	"github.com/capcheck-io/capcheck/internal/domain/validators"
	"github.com/capcheck-io/capcheck/internal/infrastructure/api"
	"github.com/capcheck-io/capcheck/internal/infrastructure/config"
)

var (
	listenAddr string
	rulesPath  string
)

// serveCmd runs the HTTP submission endpoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the application submission API",
	Long: `Load the capability rule set, build the custom validator registry, and
serve the submission endpoint until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&rulesPath, "rules", "", "rule set file (default rules.yaml)")
}

// runServe wires the validator stack and serves HTTP with graceful shutdown.
func runServe(ctx context.Context) error {
	addr := listenAddr
	if addr == "" {
		addr = viper.GetString("listen")
	}
	if addr == "" {
		addr = ":8080"
	}

	validator, err := buildValidator()
	if err != nil {
		return err
	}

	handler := api.NewHandler(validator, slog.Default())
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// buildValidator loads the rule set and assembles the application validator.
// Rule-set problems (schema violations, unknown validator names) fail here,
// before any request is served.
func buildValidator() (*appservices.ApplicationValidator, error) {
	path := rulesPath
	if path == "" {
		path = viper.GetString("rules")
	}
	if path == "" {
		path = "rules.yaml"
	}

	registry := validators.Default()

	loader, err := config.NewLoader(registry)
	if err != nil {
		return nil, err
	}

	slog.Info("loading rule set", "path", path)
	rules, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}

	return appservices.NewApplicationValidator(rules, registry), nil
}
