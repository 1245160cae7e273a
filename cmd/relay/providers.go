package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
	"tessera-ai/relay/pkg/providers"
	"tessera-ai/relay/pkg/registry"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage the provider roster",
	Long: `Manage the roster of configured inference providers.

Examples:
  # List configured providers
  relay providers list

  # Register an Ollama-style local backend
  relay providers add --name local-llm --family local --url http://localhost:11434 --models llama3

  # Register an OpenAI-style vendor with a key
  relay providers add --name openai --family vendor-chat --url https://api.openai.com/v1 --key sk-... --models gpt-4o

  # Probe connectivity, activate, remove
  relay providers test <id>
  relay providers use <id>
  relay providers rm <id>`,
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	RunE:  runProvidersList,
}

var addFlags struct {
	name    string
	family  string
	baseURL string
	key     string
	models  []string
}

var providersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new provider",
	RunE:  runProvidersAdd,
}

var providersRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersRm,
}

var providersTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Probe a provider's connectivity",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersTest,
}

var providersUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a provider the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersUse,
}

var setFlags struct {
	name    string
	baseURL string
	key     string
	models  []string
}

var providersSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update a provider's settings",
	Long: `Update a provider's mutable settings. Only the given flags change;
the protocol family is fixed at creation.`,
	Args: cobra.ExactArgs(1),
	RunE: runProvidersSet,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersAddCmd)
	providersCmd.AddCommand(providersRmCmd)
	providersCmd.AddCommand(providersTestCmd)
	providersCmd.AddCommand(providersUseCmd)
	providersCmd.AddCommand(providersSetCmd)

	providersSetCmd.Flags().StringVar(&setFlags.name, "name", "", "new human label")
	providersSetCmd.Flags().StringVar(&setFlags.baseURL, "url", "", "new endpoint base URL")
	providersSetCmd.Flags().StringVar(&setFlags.key, "key", "", "new API key or bearer token")
	providersSetCmd.Flags().StringSliceVar(&setFlags.models, "models", nil, "replacement model list")

	providersAddCmd.Flags().StringVar(&addFlags.name, "name", "", "human label for the provider")
	providersAddCmd.Flags().StringVar(&addFlags.family, "family", "", "protocol family (local, aggregator, vendor-chat, vendor-message, custom)")
	providersAddCmd.Flags().StringVar(&addFlags.baseURL, "url", "", "endpoint base URL")
	providersAddCmd.Flags().StringVar(&addFlags.key, "key", "", "API key or bearer token")
	providersAddCmd.Flags().StringSliceVar(&addFlags.models, "models", nil, "model identifiers (first is the default)")
	_ = providersAddCmd.MarkFlagRequired("family")
	_ = providersAddCmd.MarkFlagRequired("url")
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	records := gw.ListProviders()
	if outputFormat == string(cli.FormatJSON) {
		return formatter().FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("no providers configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFAMILY\tURL\tACTIVE\tCONNECTED\tREQUESTS\tTOKENS\tCOST")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t$%.4f\n",
			rec.ID, rec.Name, rec.Family, rec.BaseURL,
			mark(rec.Active), mark(rec.Connected),
			rec.Usage.Requests, rec.Usage.Tokens, rec.Usage.Cost)
	}
	return w.Flush()
}

func runProvidersAdd(cmd *cobra.Command, args []string) error {
	family, err := providers.ParseFamily(addFlags.family)
	if err != nil {
		return cli.NewConfigError("family", err.Error())
	}

	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	rec, err := gw.AddProvider(registry.Spec{
		Name:       addFlags.name,
		Family:     family,
		BaseURL:    addFlags.baseURL,
		Credential: addFlags.key,
		Models:     addFlags.models,
	})
	if err != nil {
		return cli.NewCommandError("providers add", err)
	}

	if outputFormat == string(cli.FormatJSON) {
		return formatter().FormatTo(os.Stdout, rec)
	}
	fmt.Printf("✓ Provider %q registered (id: %s)\n", rec.Name, rec.ID)
	return nil
}

func runProvidersRm(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.DeleteProvider(args[0]); err != nil {
		return cli.NewCommandError("providers rm", err)
	}
	fmt.Printf("✓ Provider %s removed\n", args[0])
	if active, ok := gw.GetActiveProvider(); ok {
		fmt.Printf("✓ Active provider is now %q\n", active.Name)
	}
	return nil
}

func runProvidersTest(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.TestProvider(context.Background(), args[0]); err != nil {
		fmt.Printf("✗ Provider %s unreachable: %v\n", args[0], err)
		return cli.NewCommandError("providers test", err)
	}
	fmt.Printf("✓ Provider %s reachable\n", args[0])
	return nil
}

func runProvidersUse(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.SetActiveProvider(args[0]); err != nil {
		return cli.NewCommandError("providers use", err)
	}
	rec, _ := gw.GetProvider(args[0])
	fmt.Printf("✓ Active provider: %s\n", displayName(rec))
	return nil
}

func runProvidersSet(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	var patch registry.Patch
	if cmd.Flags().Changed("name") {
		patch.Name = &setFlags.name
	}
	if cmd.Flags().Changed("url") {
		patch.BaseURL = &setFlags.baseURL
	}
	if cmd.Flags().Changed("key") {
		patch.Credential = &setFlags.key
	}
	if cmd.Flags().Changed("models") {
		patch.Models = &setFlags.models
	}

	if err := gw.UpdateProvider(args[0], patch); err != nil {
		return cli.NewCommandError("providers set", err)
	}
	fmt.Printf("✓ Provider %s updated\n", args[0])
	return nil
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func displayName(rec registry.ProviderRecord) string {
	if strings.TrimSpace(rec.Name) == "" {
		return rec.ID
	}
	return rec.Name
}
