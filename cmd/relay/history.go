package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"tessera-ai/relay/pkg/cli"
	"tessera-ai/relay/pkg/history"
)

var historyFlags struct {
	clear bool
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the request history",
	Long: `Show recent requests, newest first, from the durable request log.

Examples:
  relay history
  relay history --limit 10
  relay history --clear`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyFlags.clear, "clear", false, "delete all request history")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 50, "maximum records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	gw, err := openGateway()
	if err != nil {
		return err
	}
	defer gw.Close()

	if historyFlags.clear {
		if err := gw.ClearHistory(); err != nil {
			return cli.NewCommandError("history", err)
		}
		fmt.Println("✓ History cleared")
		return nil
	}

	records, err := gw.PersistedHistory(historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if outputFormat == string(cli.FormatJSON) {
		return formatter().FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("no requests recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPROVIDER\tMODEL\tSTATUS\tTOKENS\tCOST\tDURATION")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t$%.4f\t%s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.ProviderName, rec.Model, statusText(rec),
			rec.Tokens, rec.Cost, rec.Duration)
	}
	return w.Flush()
}

func statusText(rec history.RequestRecord) string {
	if rec.Status == history.StatusFailed && rec.Error != "" {
		return fmt.Sprintf("failed (%s)", rec.Error)
	}
	return string(rec.Status)
}
