package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import provider configuration from JSON",
	Long: `Replace the provider roster with the contents of an exported JSON
document. The import is all-or-nothing: a document that fails validation
leaves the current configuration untouched.

Example:
  relay import providers.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("import", err)
	}

	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.ImportConfiguration(data); err != nil {
		return cli.NewCommandError("import", err)
	}

	records := gw.ListProviders()
	fmt.Printf("✓ Imported %d providers\n", len(records))
	if active, ok := gw.GetActiveProvider(); ok {
		fmt.Printf("✓ Active provider: %s\n", displayName(active))
	}
	return nil
}
