package main

import (
	"fmt"
	"sort"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/catalog"
	"restaurant-directory/internal/restaurant"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load default catalog rows from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}
		ctx := cmd.Context()

		f, err := catalog.LoadSeedFile(seedFile)
		if err != nil {
			return err
		}

		actor := access.Identity{Role: access.RoleAdmin, Name: "menuctl"}

		report, err := catalog.Seed(ctx, actor, f)
		if err != nil {
			return err
		}
		created, skipped, err := restaurant.SeedAmenities(ctx, actor, f.AmenityCategories)
		if err != nil {
			return err
		}
		report["amenities"] = [2]int{created, skipped}

		printReport(report)
		return nil
	},
}

func printReport(report catalog.SeedReport) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan)

	kinds := make([]string, 0, len(report))
	for k := range report {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Println("📦 Seed results:")
	for _, k := range kinds {
		counts := report[k]
		fmt.Printf("   %-24s ", k)
		green.Printf("%d created", counts[0])
		fmt.Print(", ")
		cyan.Printf("%d already present\n", counts[1])
	}
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "catalog YAML file")
}
