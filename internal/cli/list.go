package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus hashes by processing state",
}

var listUnprocessedCmd = &cobra.Command{
	Use:   "unprocessed",
	Short: "Hashes with no recorded outcome yet",
	Long: `Print every ingested hash that has neither a summary nor a failure
record, one per line, in stable order. This is the work queue for
"codemine parse".`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runList(cmd, "unprocessed")
	},
}

var listEligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "Summarized hashes with at least one token",
	Long: `Print every hash that parsed and produced tokens, one per line, in
stable order. These are the files vocabulary extraction draws from.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runList(cmd, "eligible")
	},
}

func runList(cmd *cobra.Command, which string) {
	setup()

	ctx := context.Background()
	c := openCorpus(ctx)
	defer c.Close()

	var hashes []string
	var err error
	switch which {
	case "unprocessed":
		hashes, err = c.ListUnprocessed(ctx)
	case "eligible":
		hashes, err = c.ListEligible(ctx)
	}
	if err != nil {
		fatal(exitInfra, "%v", err)
	}

	for _, hash := range hashes {
		fmt.Fprintln(cmd.OutOrStdout(), hash)
	}
}

func init() {
	listCmd.AddCommand(listUnprocessedCmd)
	listCmd.AddCommand(listEligibleCmd)
	rootCmd.AddCommand(listCmd)
}
