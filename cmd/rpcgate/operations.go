package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/config"
	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/operation"
)

var operationsContract string

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operations exposed by a contract",
	Long: `List every operation the configured contract exposes, with its
parameter schema and return label.

The contract is read from the config file; --contract overrides it.`,
	RunE: runOperations,
}

func init() {
	operationsCmd.Flags().StringVar(&operationsContract, "contract", "", "contract name (overrides config)")
	rootCmd.AddCommand(operationsCmd)
}

func runOperations(cmd *cobra.Command, args []string) error {
	name := operationsContract
	if name == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return fmt.Errorf("no contract given and config unavailable: %w", err)
		}
		name = cfg.Contract.Name
	}

	factory, err := contract.Resolve(name)
	if err != nil {
		return err
	}
	registry, err := app.NewRegistry(factory().Operations())
	if err != nil {
		return err
	}

	fmt.Printf("Contract %q exposes %d operations:\n\n", name, registry.Len())
	for _, opName := range registry.Names() {
		op, err := registry.Lookup(opName)
		if err != nil {
			return err
		}
		fmt.Printf("  %s(%s)", op.Name, formatParams(op.Params))
		if op.HasReturn() {
			fmt.Printf(" -> %s", op.Returns)
		}
		fmt.Println()
	}
	return nil
}

func formatParams(params []operation.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := p.Type.String()
		if p.List {
			t = "List<" + t + ">"
		}
		parts[i] = p.Name + " " + t
	}
	return strings.Join(parts, ", ")
}
