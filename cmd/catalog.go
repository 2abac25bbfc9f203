package cmd

import (
	"fmt"
	"pagewidth/core"
	"pagewidth/models"

	"github.com/spf13/cobra"
)

var catalogWidth int

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspects the site rule catalog",
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <url>",
	Short: "Prints the catalog entries matching a page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := core.ParsePageURL(args[0])
		if err != nil {
			return err
		}
		entries := appCatalog.LookupSiteRules(u.String(), catalogWidth)
		if entries == nil {
			entries = []models.CatalogEntry{}
		}
		return printJSON(entries)
	},
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Checks every catalog entry's rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		warnings := appCatalog.Lint(catalogWidth)
		for _, w := range warnings {
			fmt.Println(w.String())
		}
		fmt.Printf("%d entries, %d warnings\n", appCatalog.Len(), len(warnings))
		if len(warnings) > 0 {
			return fmt.Errorf("catalog has %d warnings", len(warnings))
		}
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().IntVar(&catalogWidth, "width", models.DefaultWidth, "width used to render rule values")
	catalogCmd.AddCommand(catalogLookupCmd, catalogLintCmd)
	rootCmd.AddCommand(catalogCmd)
}
