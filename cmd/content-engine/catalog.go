// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the topic catalog driving generation",
	Long: `Catalog loads the topic catalog and prints each category with its
topics, in document order. Useful for checking what a generate run would
cover before spending backend calls.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("catalog", "", "topic catalog JSON file (default features.json)")
	catalogCmd.Flags().Bool("verbose", false, "print topic descriptions")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = viper.GetString("catalog_file")
	}
	if path == "" {
		path = "features.json"
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	for _, c := range cat.Categories() {
		fmt.Fprintf(os.Stdout, "%s (%d topics)\n", c.Name, len(c.Topics()))
		if !verbose {
			continue
		}
		for _, t := range c.Topics() {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", t.ID, t.Description)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d categories, %d topics\n", len(cat.Categories()), cat.Len())
	return nil
}
