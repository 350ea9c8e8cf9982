package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Built-in contracts register themselves here.
	_ "github.com/artpar/rpcgate/core/example"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rpcgate",
	Short: "HTTP gateway that dispatches requests to typed service operations",
	Long: `rpcgate hosts a service contract over HTTP.

Each request path names an operation; query or form parameters are
coerced to the operation's declared types, the result streams back as
JSON, and the root path serves a self-describing operation listing.

Quick start:
  rpcgate serve       # Start the dispatch server
  rpcgate validate    # Validate configuration
  rpcgate operations  # List the hosted contract's operations`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "rpcgate.yaml", "config file path")
}
