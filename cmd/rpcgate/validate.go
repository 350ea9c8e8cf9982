package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/config"
	"github.com/artpar/rpcgate/domain/contract"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the rpcgate configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - The configured contract is registered
  - The contract's operation schema passes registration

Examples:
  rpcgate validate
  rpcgate validate --config /etc/rpcgate/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	factory, err := contract.Resolve(cfg.Contract.Name)
	if err != nil {
		fmt.Printf("  %s Contract %q registered\n", crossMark, cfg.Contract.Name)
		return err
	}
	fmt.Printf("  %s Contract %q registered\n", checkMark, cfg.Contract.Name)

	registry, err := app.NewRegistry(factory().Operations())
	if err != nil {
		fmt.Printf("  %s Operation schema valid\n", crossMark)
		return err
	}
	fmt.Printf("  %s Operation schema valid (%d operations)\n", checkMark, registry.Len())

	fmt.Println()
	fmt.Println("Configuration valid")
	fmt.Printf("  Contract:  %s\n", cfg.Contract.Name)
	fmt.Printf("  Listen:    %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Auth mode: %s\n", cfg.Auth.Mode)
	fmt.Printf("  Audit:     %s\n", cfg.Audit.Mode)
	return nil
}
