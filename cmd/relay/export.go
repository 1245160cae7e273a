package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
	"tessera-ai/relay/pkg/store"
)

var exportFlags struct {
	outputPath string
	redact     bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export provider configuration as JSON",
	Long: `Export the provider roster and active selection as a portable JSON
document. Credentials are included in plaintext unless --redact is given.

Examples:
  relay export > providers.json
  relay export --redact --out providers.json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.outputPath, "out", "", "write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportFlags.redact, "redact", false, "mask credentials in the export")
}

func runExport(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	doc := gw.ExportConfiguration(store.ExportOptions{
		RedactCredentials: exportFlags.redact,
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	data = append(data, '\n')

	if exportFlags.outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(exportFlags.outputPath, data, 0o600); err != nil {
		return cli.NewCommandError("export", err)
	}
	fmt.Printf("✓ Exported %d providers to %s\n", len(doc.Providers), exportFlags.outputPath)
	return nil
}
