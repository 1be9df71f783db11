package main

import (
	"fmt"
	"os"

	"restaurant-directory/internal/config"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "menuctl",
	Short: "Operator tool for the restaurant directory",
	Long: `menuctl prepares a restaurant directory database.

Examples:

  menuctl migrate
  menuctl provision
  menuctl seed --file catalog.yaml
`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(seedCmd)
}

// connect loads tool settings, installs the logger and opens the database.
func connect() (*config.Config, error) {
	cfg := config.LoadTool()
	logger.SetGlobal(logger.New(logger.ForEnv(cfg.IsDevelopment())))

	if _, err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return cfg, nil
}
