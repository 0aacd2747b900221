package cli

import (
	"context"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"codemine/internal/corpus"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus-wide processing counts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setup()

		ctx := context.Background()
		c := openCorpus(ctx)
		defer c.Close()

		stats, err := c.CorpusStats(ctx)
		if err != nil {
			fatal(exitInfra, "%v", err)
		}

		lang, err := c.GetMeta(ctx, corpus.MetaLanguage)
		if err != nil {
			fatal(exitInfra, "reading corpus metadata: %v", err)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Metric", "Count"})
		if lang != "" {
			table.Append([]string{"language", lang})
		}
		table.Append([]string{"files", strconv.Itoa(stats.Files)})
		table.Append([]string{"summarized", strconv.Itoa(stats.Summarized)})
		table.Append([]string{"failed", strconv.Itoa(stats.Failed)})
		table.Append([]string{"pending", strconv.Itoa(stats.Pending())})
		table.Render()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
