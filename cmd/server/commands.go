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

	"github.com/spf13/cobra"
	"github.com/warp/settlement-engine/api"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/config"
	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/records/memory"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/store/postgres"
	"github.com/warp/settlement-engine/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeStore()

	calc := settlement.NewCalculator(store, settlement.WithLogger(logger.Named("settlement")))
	handler := api.NewHandler(store, calc, logger.Named("api"))
	router := api.NewRouter(handler, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		Demo:        cfg.Demo,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Bool("demo", cfg.Demo))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// =============================================================================
// COMPUTE
// =============================================================================

func newComputeCmd(flags *rootFlags) *cobra.Command {
	var (
		employeeID string
		date       string
		scenario   string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a full & final settlement and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			requested, err := calendar.ParseDate(date)
			if err != nil {
				return err
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer closeStore()

			if scenario != "" {
				if err := api.LoadScenarioData(ctx, store, scenario); err != nil {
					return fmt.Errorf("load scenario: %w", err)
				}
			}

			calc := settlement.NewCalculator(store, settlement.WithLogger(logger.Named("settlement")))
			result, err := calc.FullAndFinal(ctx, employeeID, requested)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.ToResultDTO(result))
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "load a demo scenario before computing")
	cmd.MarkFlagRequired("employee")
	return cmd
}

// =============================================================================
// SCENARIOS
// =============================================================================

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range api.Scenarios() {
				fmt.Fprintf(out, "%-24s %-8s %s\n", s.ID, s.Employee, s.Expected)
			}
			return nil
		},
	}
}

// =============================================================================
// STORE
// =============================================================================

func openStore(ctx context.Context, db config.DatabaseConfig) (records.ReadWriter, func() error, error) {
	switch db.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(db.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, db.URL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverMemory:
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}
