package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finleaf/finops/internal/config"
	"github.com/finleaf/finops/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "finopsctl",
	Short: "finopsctl - batch operations for the finops platform",
	Long: `finopsctl runs the platform's batch operations from the command line:
database migrations, receivables regeneration and MRR recomputation.

Connection settings come from the environment (DATABASE_DSN), with .env
support for local use.`,
	Version: version,
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"}); err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
