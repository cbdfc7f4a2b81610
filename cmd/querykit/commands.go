package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SanteonNL/querykit/cmd/querykit/api"
	"github.com/SanteonNL/querykit/cmd/querykit/config"
	"github.com/SanteonNL/querykit/cmd/querykit/output"
	"github.com/SanteonNL/querykit/cmd/querykit/processor"
	"github.com/SanteonNL/querykit/query/types"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "querykit",
		Short: "querykit - filter, sort and page entities from a declarative request",
		Long: `querykit serves filtered, sorted and paged entity searches.

Settings are read from QUERYKIT_* environment variables, optionally loaded
from an env file (.env by default), e.g.
  QUERYKIT_SOURCE=sqlx QUERYKIT_DATABASE_URL=postgres://... querykit serve`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default .env when present)")

	cmd.AddCommand(newServeCmd(&envFile), newQueryCmd(&envFile))
	return cmd
}

// setup loads the configuration and builds the process logger.
func setup(envFile string) (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, closer, err := output.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, log, func() { closer.Close() }, nil
}

func newServeCmd(envFile *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve entity searches over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, done, err := setup(*envFile)
			if err != nil {
				return err
			}
			defer done()
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides QUERYKIT_HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := processor.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	src, err := openSources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.close()

	handlers, stopCaches, err := newHandlers(cfg, src, metrics, log)
	if err != nil {
		return err
	}
	defer stopCaches()

	router, err := api.NewRouter(api.RouterConfig{
		Log:      log,
		Handlers: handlers,
		Gatherer: registry,
		Strict:   cfg.StrictFilters,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func newQueryCmd(envFile *string) *cobra.Command {
	var (
		entity      string
		requestFile string
		fixtureDir  string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one search request file and write the page as JSON",
		Example: `  querykit query --entity users --request req.json
  querykit query --entity teams --request req.json --fixtures testdata --out output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, done, err := setup(*envFile)
			if err != nil {
				return err
			}
			defer done()
			if fixtureDir != "" {
				cfg.Source = config.SourceMemory
				cfg.FixtureDir = fixtureDir
			}
			cfg.CacheEnabled = false

			path, err := runQuery(cmd.Context(), cfg, log, entity, requestFile, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "users", "entity to search")
	cmd.Flags().StringVar(&requestFile, "request", "", "JSON file holding the search request")
	cmd.Flags().StringVar(&fixtureDir, "fixtures", "", "read entities from JSON fixtures in this directory")
	cmd.Flags().StringVar(&outDir, "out", "output", "directory to write results to")
	cmd.MarkFlagRequired("request")
	return cmd
}

func runQuery(ctx context.Context, cfg *config.Config, log zerolog.Logger, entity, requestFile, outDir string) (string, error) {
	content, err := os.ReadFile(requestFile)
	if err != nil {
		return "", fmt.Errorf("failed to read request file: %w", err)
	}
	var req types.PagedRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return "", fmt.Errorf("failed to decode request file %s: %w", requestFile, err)
	}

	src, err := openSources(ctx, cfg, log)
	if err != nil {
		return "", err
	}
	defer src.close()

	handlers, stopCaches, err := newHandlers(cfg, src, nil, log)
	if err != nil {
		return "", err
	}
	defer stopCaches()

	h, err := findHandler(handlers, entity)
	if err != nil {
		return "", err
	}
	resp, err := h.Handle(ctx, req)
	if err != nil {
		return "", err
	}

	om, err := output.NewOutputManager(outDir, log)
	if err != nil {
		return "", err
	}
	path, err := om.WriteToJSON(resp, entity)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("entity", entity).
		Int("total", resp.TotalItems).
		Int("size", resp.Size).
		Str("file", path).
		Msg("Wrote search result")
	return path, nil
}
