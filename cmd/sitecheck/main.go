// Command sitecheck exercises a deployed ministry site from the outside.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitecheck",
	Short: "Operator checks for the ministry site",
	Long: `Operator checks for the ministry site.

Available subcommands:
  content - Load every admin section the way the site's pages do
  token   - Issue a bearer token for the protected routes`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
