package main

import (
	"restaurant-directory/internal/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table and index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}
		if err := database.Migrate(database.DB); err != nil {
			return err
		}

		color.New(color.FgGreen, color.Bold).Println("✅ Migration complete")
		return nil
	},
}
