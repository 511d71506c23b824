// cmd/botaniq/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"botaniq/internal/common/logger"
)

var (
	configPath string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "botaniq",
		Short:         "Manual testing tools for the Botaniq plant care bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config YAML file (defaults to configs/config.yaml lookup)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newDetectIntentCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newValidateDataCmd())
	return root
}

func cliLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
