/*
main.go - Application entry point

PURPOSE:
  Command line for the settlement engine. Runs the HTTP server or computes
  a single settlement and prints it as JSON.

COMMANDS:
  serve      Start the HTTP server with graceful shutdown
  compute    Compute one full & final settlement and print the result
  scenarios  List the demo scenarios

GLOBAL FLAGS (override the loaded config):
  --config   YAML config file (optional)
  --addr     HTTP listen address
  --driver   sqlite | postgres | memory
  --db       SQLite database path. Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server serve --db ./data/settlement.db

  # Run against PostgreSQL
  DATABASE_URL=postgres://... ./server serve --driver postgres

  # One-off computation from a demo scenario
  ./server compute --driver memory --scenario leave-encashment --employee emp-003

SEE ALSO:
  - config/config.go: Config sources and environment variables
  - api/server.go: Router configuration
  - settlement/payload.go: The computation behind both commands
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/settlement-engine/config"
)

type rootFlags struct {
	configPath string
	addr       string
	driver     string
	dbPath     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "server",
		Short:         "Full & final settlement engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.addr, "addr", "", "HTTP listen address")
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "store driver: sqlite, postgres or memory")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path")

	root.AddCommand(
		newServeCmd(flags),
		newComputeCmd(flags),
		newScenariosCmd(),
	)
	return root
}

// load reads the config and applies the command line overrides.
func (f *rootFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.driver != "" {
		cfg.Database.Driver = f.driver
	}
	if f.dbPath != "" {
		cfg.Database.SQLitePath = f.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
