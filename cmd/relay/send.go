package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
)

var sendFlags struct {
	prompt   string
	model    string
	provider string
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a prompt to a provider",
	Long: `Send a prompt and print the completion.

The request goes to the active provider unless --provider names one
explicitly. The model defaults to the provider's first configured model.

Examples:
  relay send --prompt "Summarize the README"
  relay send --prompt "Hello" --model gpt-4o --provider <id>`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendFlags.prompt, "prompt", "p", "", "prompt text")
	sendCmd.Flags().StringVarP(&sendFlags.model, "model", "m", "", "model identifier (default: provider's first model)")
	sendCmd.Flags().StringVar(&sendFlags.provider, "provider", "", "provider id (default: active provider)")
	_ = sendCmd.MarkFlagRequired("prompt")
}

func runSend(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	providerID := sendFlags.provider
	if providerID == "" {
		active, ok := gw.GetActiveProvider()
		if !ok {
			return cli.NewCommandError("send", fmt.Errorf("no active provider; run 'relay providers use <id>' first"))
		}
		providerID = active.ID
	}

	rec, err := gw.SendRequest(context.Background(), providerID, sendFlags.model, sendFlags.prompt)
	if err != nil {
		if rec.ID != "" {
			fmt.Fprintf(os.Stderr, "✗ Request %s failed after %s\n", rec.ID, rec.Duration)
		}
		return cli.NewCommandError("send", err)
	}

	if outputFormat == string(cli.FormatJSON) {
		return formatter().FormatTo(os.Stdout, rec)
	}

	fmt.Println(rec.Response)
	fmt.Fprintf(os.Stderr, "\n[%s · %s · %d tokens · $%.4f · %s]\n",
		rec.ProviderName, rec.Model, rec.Tokens, rec.Cost, rec.Duration)
	return nil
}
