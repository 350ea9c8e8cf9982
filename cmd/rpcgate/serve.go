package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/rpcgate/bootstrap"
	"github.com/artpar/rpcgate/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dispatch server",
	Long: `Start the rpcgate dispatch server.

The server will:
  - Load configuration from rpcgate.yaml (or --config)
  - Or load configuration from RPCGATE_* environment variables
  - Resolve the configured contract and validate its schema
  - Serve operation dispatches, descriptors, health, and metrics

Environment variables (for Docker deployments):
  RPCGATE_CONTRACT      - Contract name to host (required)
  RPCGATE_SERVER_PORT   - Server port (default: 8080)
  RPCGATE_DATABASE_DSN  - Audit database path (default: rpcgate.db)
  RPCGATE_AUTH_MODE     - Auth mode: none, static, jwt
  RPCGATE_LOG_LEVEL     - Log level: debug, info, warn, error

Examples:
  rpcgate serve
  rpcgate serve --config /etc/rpcgate/config.yaml

  # Docker (env vars only):
  RPCGATE_CONTRACT=calc rpcgate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	if !hasConfigFile && !config.HasEnvConfig() {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s with at least a contract name\n", cfgFile)
		fmt.Println("Option 2: Set the RPCGATE_CONTRACT environment variable")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  RPCGATE_CONTRACT=calc rpcgate serve")
		return nil
	}

	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}

	return app.Run()
}
