/*
Package cli provides command-line utilities shared by the relay command:
typed errors for the top-level error printer, output formatting, and
shutdown signal handling.

Output formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Graceful shutdown on SIGINT/SIGTERM:

	sig := <-cli.WaitForShutdown()
*/
package cli
