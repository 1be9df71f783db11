package main

import (
	"fmt"

	"restaurant-directory/internal/provision"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var skipAdmin bool

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create role groups and the first admin account",
	Long: `provision creates the Customers, Restaurant Owners and Website Admins
groups if they are missing. When ADMIN_EMAIL and ADMIN_PASSWORD are set and
no admin exists yet, it also creates the first admin account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := connect()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		green := color.New(color.FgGreen, color.Bold)
		yellow := color.New(color.FgYellow)

		groups, err := provision.EnsureGroups(ctx)
		if err != nil {
			return fmt.Errorf("provisioning groups: %w", err)
		}
		for _, g := range groups {
			if g.Created {
				green.Printf("  + group %s\n", g.Name)
			} else {
				yellow.Printf("  = group %s already exists\n", g.Name)
			}
		}

		if skipAdmin || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			yellow.Println("  = admin account skipped (ADMIN_EMAIL / ADMIN_PASSWORD not set)")
			return nil
		}

		created, err := provision.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("provisioning admin: %w", err)
		}
		if created {
			green.Printf("  + admin %s\n", cfg.AdminEmail)
		} else {
			yellow.Println("  = an admin account already exists")
		}
		return nil
	},
}

func init() {
	provisionCmd.Flags().BoolVar(&skipAdmin, "skip-admin", false, "only create groups")
}
